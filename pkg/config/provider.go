package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/astralphase/pkg/phase"
	"github.com/chrissnell/astralphase/pkg/solar"
)

// DefaultUpdateInterval is how often a sensor re-evaluates when the
// configuration does not say
const DefaultUpdateInterval = time.Minute

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSensors() ([]SensorData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Sensors     []SensorData     `json:"sensors"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// SensorData holds one astral phase sensor with every default applied
type SensorData struct {
	Name                string        `json:"name"`
	Latitude            float64       `json:"latitude"`
	Longitude           float64       `json:"longitude"`
	TimeZone            string        `json:"timezone,omitempty"`
	Depression          float64       `json:"depression"`
	SolarNoon           string        `json:"solar_noon,omitempty"`
	TransitionPhase     bool          `json:"transition_phase"`
	TransitionElevation float64       `json:"transition_elevation"`
	UpdateInterval      time.Duration `json:"update_interval"`
}

// PhaseConfig returns the classifier settings for this sensor
func (s SensorData) PhaseConfig() phase.Config {
	return phase.Config{
		UseTransition:       s.TransitionPhase,
		TransitionElevation: s.TransitionElevation,
	}
}

// Location builds the ephemeris for this sensor
func (s SensorData) Location() (*solar.Location, error) {
	tz := time.UTC
	if s.TimeZone != "" {
		var err error
		tz, err = time.LoadLocation(s.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", s.Name, err)
		}
	}

	noon, err := solar.ParseNoonMethod(s.SolarNoon)
	if err != nil {
		return nil, fmt.Errorf("sensor %q: %w", s.Name, err)
	}

	return solar.NewLocation(s.Name, s.Latitude, s.Longitude, tz, s.Depression, noon)
}

// StorageData holds the configuration for storage backends
type StorageData struct {
	History *HistoryData `json:"history,omitempty"`
}

// HistoryData configures the phase transition history. Backend is "sqlite"
// (Path) or "timescaledb" (ConnectionString).
type HistoryData struct {
	Backend          string `json:"backend"`
	Path             string `json:"path,omitempty"`
	ConnectionString string `json:"connection_string,omitempty"`
}

// ControllerData holds the configuration for various controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	Metrics    bool   `json:"metrics,omitempty"`
}

// Validate checks the loaded configuration for problems that would stop the
// daemon from starting
func (c *ConfigData) Validate() error {
	if len(c.Sensors) == 0 {
		return fmt.Errorf("%w: no sensors configured", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(c.Sensors))
	for _, s := range c.Sensors {
		if s.Name == "" {
			return fmt.Errorf("%w: sensor without a name", ErrInvalidConfig)
		}
		if seen[s.Name] {
			return fmt.Errorf("%w: duplicate sensor name %q", ErrInvalidConfig, s.Name)
		}
		seen[s.Name] = true

		if math.IsNaN(s.TransitionElevation) || math.IsInf(s.TransitionElevation, 0) {
			return fmt.Errorf("%w: sensor %q: transition_elevation must be finite", ErrInvalidConfig, s.Name)
		}
		if s.UpdateInterval <= 0 {
			return fmt.Errorf("%w: sensor %q: update_interval must be positive", ErrInvalidConfig, s.Name)
		}
		if _, err := s.Location(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	for _, con := range c.Controllers {
		switch con.Type {
		case "rest", "restserver":
			if con.RESTServer == nil {
				return fmt.Errorf("%w: rest controller without a rest section", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown controller type %q", ErrInvalidConfig, con.Type)
		}
	}

	if h := c.Storage.History; h != nil {
		switch h.Backend {
		case "sqlite":
			if h.Path == "" {
				return fmt.Errorf("%w: storage.history.path is empty", ErrInvalidConfig)
			}
		case "timescaledb":
			if h.ConnectionString == "" {
				return fmt.Errorf("%w: storage.history.connection_string is empty", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown history backend %q", ErrInvalidConfig, h.Backend)
		}
	}

	return nil
}
