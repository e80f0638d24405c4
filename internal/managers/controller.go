package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/astralphase/internal/controllers/restserver"
	"github.com/chrissnell/astralphase/internal/metrics"
	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/internal/storage/history"
	"github.com/chrissnell/astralphase/pkg/config"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// ControllerDeps are the running components controllers serve data from.
// History and Metrics may be nil.
type ControllerDeps struct {
	Sensors []*sensor.Sensor
	History history.Store
	Metrics *metrics.Collector
}

// NewControllerManager creates a new controller manager
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, deps ControllerDeps, logger *zap.SugaredLogger) (ControllerManager, error) {
	controllerConfigs, err := configProvider.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("error loading controller configuration: %v", err)
	}

	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		deps:        deps,
		logger:      logger,
		controllers: make([]Controller, 0),
	}

	// Create controllers based on configuration
	for _, con := range controllerConfigs {
		controller, err := cm.createController(con)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	deps        ControllerDeps
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller based on the controller configuration
func (cm *controllerManager) createController(cc config.ControllerData) (Controller, error) {
	switch cc.Type {
	case "restserver", "rest":
		if cc.RESTServer == nil {
			return nil, fmt.Errorf("rest controller has no rest configuration")
		}
		return restserver.NewController(cm.ctx, cm.wg, *cc.RESTServer, cm.deps.Sensors, cm.deps.History, cm.deps.Metrics, cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
