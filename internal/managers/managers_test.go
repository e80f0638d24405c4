package managers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/pkg/config"
	"github.com/chrissnell/astralphase/pkg/phase"
	"go.uber.org/zap"
)

// staticProvider serves an in-memory configuration
type staticProvider struct {
	data *config.ConfigData
}

func (p staticProvider) LoadConfig() (*config.ConfigData, error)          { return p.data, nil }
func (p staticProvider) GetSensors() ([]config.SensorData, error)         { return p.data.Sensors, nil }
func (p staticProvider) GetStorageConfig() (*config.StorageData, error)   { return &p.data.Storage, nil }
func (p staticProvider) GetControllers() ([]config.ControllerData, error) { return p.data.Controllers, nil }
func (p staticProvider) IsReadOnly() bool                                 { return true }
func (p staticProvider) Close() error                                     { return nil }

func sensorData(name string) config.SensorData {
	return config.SensorData{
		Name:                name,
		Latitude:            47.6,
		Longitude:           -122.3,
		TimeZone:            "America/Los_Angeles",
		Depression:          6,
		TransitionPhase:     true,
		TransitionElevation: 18,
		UpdateInterval:      10 * time.Millisecond,
	}
}

func TestSensorManager(t *testing.T) {
	provider := staticProvider{data: &config.ConfigData{
		Sensors: []config.SensorData{sensorData("seattle"), sensorData("tacoma")},
	}}

	updates := make(chan sensor.State, 16)
	listener := sensor.ListenerFunc(func(_ context.Context, _, cur sensor.State) {
		select {
		case updates <- cur:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	sm, err := NewSensorManager(ctx, &wg, provider, []sensor.Listener{listener}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewSensorManager: %v", err)
	}

	if n := len(sm.Sensors()); n != 2 {
		t.Fatalf("got %d sensors, expected 2", n)
	}
	if sm.GetSensor("tacoma") == nil || sm.GetSensor("olympia") != nil {
		t.Error("GetSensor lookup mismatch")
	}

	if err := sm.StartSensors(); err != nil {
		t.Fatalf("StartSensors: %v", err)
	}
	select {
	case st := <-updates:
		if st.Label == phase.Unknown || st.Attributes == nil {
			t.Errorf("first update = %+v, expected a classified state", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a sensor update")
	}

	cancel()
	wg.Wait()
}

func TestSensorManagerInvalidLocation(t *testing.T) {
	bad := sensorData("nowhere")
	bad.TimeZone = "Mars/Olympus_Mons"
	provider := staticProvider{data: &config.ConfigData{Sensors: []config.SensorData{bad}}}

	_, err := NewSensorManager(context.Background(), &sync.WaitGroup{}, provider, nil, zap.NewNop().Sugar())
	if err == nil {
		t.Error("expected an error for an unknown time zone")
	}
}

func TestStorageManager(t *testing.T) {
	logger := zap.NewNop().Sugar()

	sm, err := NewStorageManager(&config.StorageData{}, logger)
	if err != nil {
		t.Fatalf("NewStorageManager disabled: %v", err)
	}
	if sm.History != nil || sm.Listeners() != nil {
		t.Error("history should be disabled without configuration")
	}
	if err := sm.Close(); err != nil {
		t.Errorf("Close disabled: %v", err)
	}

	path := filepath.Join(t.TempDir(), "history.db")
	sm, err = NewStorageManager(&config.StorageData{History: &config.HistoryData{Backend: "sqlite", Path: path}}, logger)
	if err != nil {
		t.Fatalf("NewStorageManager sqlite: %v", err)
	}
	if sm.History == nil || len(sm.Listeners()) != 1 {
		t.Error("expected an SQLite history store and one recorder listener")
	}
	if err := sm.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	if _, err := NewStorageManager(&config.StorageData{History: &config.HistoryData{Backend: "influxdb"}}, logger); err == nil {
		t.Error("expected an error for an unknown backend")
	}
}

func TestControllerManager(t *testing.T) {
	logger := zap.NewNop().Sugar()
	home := sensor.New("home", nil, phase.DefaultConfig(), logger)

	provider := staticProvider{data: &config.ConfigData{
		Controllers: []config.ControllerData{{Type: "rest", RESTServer: &config.RESTServerData{ListenAddr: "127.0.0.1", Port: 18080}}},
	}}
	if _, err := NewControllerManager(context.Background(), &sync.WaitGroup{}, provider, ControllerDeps{Sensors: []*sensor.Sensor{home}}, logger); err != nil {
		t.Errorf("NewControllerManager rest: %v", err)
	}

	for _, cc := range []config.ControllerData{
		{Type: "wunderground"},
		{Type: "rest"},
	} {
		provider := staticProvider{data: &config.ConfigData{Controllers: []config.ControllerData{cc}}}
		if _, err := NewControllerManager(context.Background(), &sync.WaitGroup{}, provider, ControllerDeps{Sensors: []*sensor.Sensor{home}}, logger); err == nil {
			t.Errorf("expected an error for controller %+v", cc)
		}
	}
}
