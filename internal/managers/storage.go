package managers

import (
	"fmt"

	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/internal/storage/history"
	"github.com/chrissnell/astralphase/pkg/config"
	"go.uber.org/zap"
)

// StorageManager holds our active storage backends
type StorageManager struct {
	History history.Store
	logger  *zap.SugaredLogger
}

// NewStorageManager creates a StorageManager, opening the history backend if
// one is configured. A nil History means history is disabled.
func NewStorageManager(c *config.StorageData, logger *zap.SugaredLogger) (*StorageManager, error) {
	s := &StorageManager{logger: logger}
	if c == nil || c.History == nil {
		logger.Info("phase history storage not configured")
		return s, nil
	}

	store, err := openHistory(c.History, logger)
	if err != nil {
		return s, fmt.Errorf("could not add %s history backend: %v", c.History.Backend, err)
	}
	s.History = store
	return s, nil
}

func openHistory(h *config.HistoryData, logger *zap.SugaredLogger) (history.Store, error) {
	switch h.Backend {
	case "", "sqlite":
		logger.Infof("recording phase history to SQLite database %s", h.Path)
		return history.OpenSQLite(h.Path)
	case "timescaledb":
		return history.OpenTimescaleDB(h.ConnectionString, logger)
	default:
		return nil, fmt.Errorf("unknown history backend: %s", h.Backend)
	}
}

// Listeners returns the sensor listeners for the enabled backends
func (s *StorageManager) Listeners() []sensor.Listener {
	if s.History == nil {
		return nil
	}
	return []sensor.Listener{history.NewRecorder(s.History, s.logger)}
}

// Close releases every backend
func (s *StorageManager) Close() error {
	if s.History == nil {
		return nil
	}
	return s.History.Close()
}
