package managers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/pkg/config"
	"go.uber.org/zap"
)

// SensorManager owns the configured astral phase sensors
type SensorManager interface {
	StartSensors() error
	Sensors() []*sensor.Sensor
	GetSensor(name string) *sensor.Sensor
}

// NewSensorManager creates a SensorManager populated with one sensor per
// configured location. Every sensor notifies the given listeners.
func NewSensorManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, listeners []sensor.Listener, logger *zap.SugaredLogger) (SensorManager, error) {
	sensorConfigs, err := configProvider.GetSensors()
	if err != nil {
		return nil, fmt.Errorf("error loading sensor configuration: %v", err)
	}

	sm := &sensorManager{
		ctx:       ctx,
		wg:        wg,
		logger:    logger,
		byName:    make(map[string]*sensor.Sensor, len(sensorConfigs)),
		intervals: make(map[string]time.Duration, len(sensorConfigs)),
	}

	for _, sc := range sensorConfigs {
		s, err := createSensorFromConfig(sc, listeners, logger)
		if err != nil {
			return nil, fmt.Errorf("error creating sensor [%s]: %w", sc.Name, err)
		}
		if _, exists := sm.byName[sc.Name]; exists {
			return nil, fmt.Errorf("sensor %s already exists", sc.Name)
		}
		sm.sensors = append(sm.sensors, s)
		sm.byName[sc.Name] = s
		sm.intervals[sc.Name] = sc.UpdateInterval
	}

	return sm, nil
}

type sensorManager struct {
	ctx       context.Context
	wg        *sync.WaitGroup
	logger    *zap.SugaredLogger
	sensors   []*sensor.Sensor
	byName    map[string]*sensor.Sensor
	intervals map[string]time.Duration
}

func (m *sensorManager) StartSensors() error {
	m.logger.Info("Starting sensor manager...")
	for _, s := range m.sensors {
		interval := m.intervals[s.Name()]
		m.logger.Infof("Starting astral phase sensor [%v], updating every %v...", s.Name(), interval)
		s.Run(m.ctx, m.wg, interval)
	}
	return nil
}

func (m *sensorManager) Sensors() []*sensor.Sensor {
	return m.sensors
}

// GetSensor returns the named sensor, or nil if it is not configured
func (m *sensorManager) GetSensor(name string) *sensor.Sensor {
	return m.byName[name]
}

func createSensorFromConfig(sc config.SensorData, listeners []sensor.Listener, logger *zap.SugaredLogger) (*sensor.Sensor, error) {
	loc, err := sc.Location()
	if err != nil {
		return nil, err
	}
	return sensor.New(sc.Name, loc, sc.PhaseConfig(), logger.With("sensor", sc.Name), sensor.WithListeners(listeners...)), nil
}
