package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hybridship/powersim/core/metrics"
	"github.com/hybridship/powersim/infra/mqtt"
)

// Config is the root configuration of the simulation service.
type Config struct {
	Plant      PlantConfig      `json:"plant"`
	Simulation SimulationConfig `json:"simulation"`
	Metrics    metrics.Config   `json:"metrics"`
	MQTT       MQTTConfig       `json:"mqtt"`
}

// SimulationConfig holds run parameters that are not part of the plant model.
type SimulationConfig struct {
	// StepSeconds is the demand series resolution.
	StepSeconds int `json:"step_seconds"`
	// Start timestamps the first timestep, RFC 3339. Empty means run start.
	Start string `json:"start"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.StepSeconds == 0 {
		c.StepSeconds = 3600
	}
}

// Validate checks the run parameters.
func (c SimulationConfig) Validate() error {
	if c.StepSeconds <= 0 {
		return fmt.Errorf("step_seconds must be positive")
	}
	return nil
}

// MQTTConfig wraps the publisher settings with an enable switch.
type MQTTConfig struct {
	Enabled     bool `json:"enabled"`
	mqtt.Config `json:",squash"`
}

// Load reads the configuration from a YAML or JSON file with optional
// environment overrides (POWERSIM_ prefix, __ as the key separator).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("POWERSIM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "powersim_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Simulation.SetDefaults()
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Plant.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
