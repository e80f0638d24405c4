package config

import (
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/astralphase/pkg/phase"
	"github.com/chrissnell/astralphase/pkg/solar"
	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

// ParseYAML decodes a YAML document, applies defaults and validates it
func ParseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Sensors     []SensorYAML     `yaml:"sensors"`
		Storage     StorageYAML      `yaml:"storage,omitempty"`
		Controllers []ControllerYAML `yaml:"controllers,omitempty"`
	}

	if err := yaml.UnmarshalStrict(data, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Sensors:     make([]SensorData, len(yamlConfig.Sensors)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, s := range yamlConfig.Sensors {
		sensor, err := s.toSensorData()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		config.Sensors[i] = sensor
	}

	if yamlConfig.Storage.History != nil {
		h := yamlConfig.Storage.History
		config.Storage.History = &HistoryData{
			Backend:          h.Backend,
			Path:             h.Path,
			ConnectionString: h.ConnectionString,
		}
		if config.Storage.History.Backend == "" {
			config.Storage.History.Backend = "sqlite"
		}
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				Cert:       controller.RESTServer.Cert,
				Key:        controller.RESTServer.Key,
				Port:       controller.RESTServer.Port,
				ListenAddr: controller.RESTServer.ListenAddr,
				Metrics:    controller.RESTServer.Metrics,
			}
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (y *YAMLProvider) GetSensors() ([]SensorData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Sensors, nil
}

func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

func (y *YAMLProvider) Close() error {
	return nil
}

// SensorYAML uses pointers where an omitted key must fall back to a default
// that differs from the zero value.
type SensorYAML struct {
	Name                string   `yaml:"name"`
	Latitude            float64  `yaml:"latitude"`
	Longitude           float64  `yaml:"longitude"`
	TimeZone            string   `yaml:"timezone,omitempty"`
	Depression          string   `yaml:"depression,omitempty"`
	SolarNoon           string   `yaml:"solar_noon,omitempty"`
	TransitionPhase     *bool    `yaml:"transition_phase,omitempty"`
	TransitionElevation *float64 `yaml:"transition_elevation,omitempty"`
	UpdateInterval      string   `yaml:"update_interval,omitempty"`
}

func (s SensorYAML) toSensorData() (SensorData, error) {
	depression, err := solar.ParseDepression(s.Depression)
	if err != nil {
		return SensorData{}, fmt.Errorf("sensor %q: %w", s.Name, err)
	}

	data := SensorData{
		Name:                s.Name,
		Latitude:            s.Latitude,
		Longitude:           s.Longitude,
		TimeZone:            s.TimeZone,
		Depression:          depression,
		SolarNoon:           s.SolarNoon,
		TransitionPhase:     true,
		TransitionElevation: phase.DefaultTransitionElevation,
		UpdateInterval:      DefaultUpdateInterval,
	}

	if s.TransitionPhase != nil {
		data.TransitionPhase = *s.TransitionPhase
	}
	if s.TransitionElevation != nil {
		data.TransitionElevation = *s.TransitionElevation
	}
	if s.UpdateInterval != "" {
		data.UpdateInterval, err = time.ParseDuration(s.UpdateInterval)
		if err != nil {
			return SensorData{}, fmt.Errorf("sensor %q: update_interval: %w", s.Name, err)
		}
	}

	return data, nil
}

type StorageYAML struct {
	History *HistoryYAML `yaml:"history,omitempty"`
}

type HistoryYAML struct {
	Backend          string `yaml:"backend,omitempty"`
	Path             string `yaml:"path,omitempty"`
	ConnectionString string `yaml:"connection_string,omitempty"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
	Metrics    bool   `yaml:"metrics,omitempty"`
}
