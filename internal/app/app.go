package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/astralphase/internal/managers"
	"github.com/chrissnell/astralphase/internal/metrics"
	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	storageConfig, err := a.configProvider.GetStorageConfig()
	if err != nil {
		return err
	}

	// Initialize the storage manager
	storageManager, err := managers.NewStorageManager(storageConfig, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := storageManager.Close(); err != nil {
			a.logger.Errorf("error closing storage: %v", err)
		}
	}()

	collector := metrics.New()
	listeners := append([]sensor.Listener{collector}, storageManager.Listeners()...)

	// Initialize the sensor manager
	sm, err := managers.NewSensorManager(ctx, &wg, a.configProvider, listeners, a.logger)
	if err != nil {
		return err
	}

	// Initialize the controller manager
	cm, err := managers.NewControllerManager(ctx, &wg, a.configProvider, managers.ControllerDeps{
		Sensors: sm.Sensors(),
		History: storageManager.History,
		Metrics: collector,
	}, a.logger)
	if err != nil {
		return err
	}
	err = cm.StartControllers()
	if err != nil {
		return err
	}

	if err := sm.StartSensors(); err != nil {
		return err
	}

	a.logger.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
