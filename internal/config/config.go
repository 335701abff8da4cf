// Package config holds the r9c configuration: registry caps as policy,
// logging sinks, and shell preferences. Config is a leaf package; the
// command layer converts RegistryConfig into membrane limits.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all r9c configuration.
type Config struct {
	Name string `yaml:"name"`

	// Membrane registry caps
	Registry RegistryConfig `yaml:"registry"`

	// Logging sinks
	Logging LoggingConfig `yaml:"logging"`

	// Interactive shell preferences
	Shell ShellConfig `yaml:"shell"`
}

// RegistryConfig configures the membrane store caps.
type RegistryConfig struct {
	MaxMembranes      int   `yaml:"max_membranes"`       // live membranes
	MaxChildren       int   `yaml:"max_children"`        // direct children per membrane
	MaxObjects        int   `yaml:"max_objects"`         // distinct symbols per membrane
	MaxFactors        int   `yaml:"max_factors"`         // factors per shape signature
	MaxTensorElements int   `yaml:"max_tensor_elements"` // buffer budget per membrane
	Seed              int64 `yaml:"seed"`                // buffer init seed; 0 = time-seeded
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level   string `yaml:"level"` // debug, info, warn, error
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// ShellConfig configures the interactive shell.
type ShellConfig struct {
	Theme        string `yaml:"theme"`         // dark, light
	HistoryLimit int    `yaml:"history_limit"` // scrollback entries kept
}

// DefaultConfig returns the default configuration. Registry caps reproduce
// the stock membrane limits.
func DefaultConfig() *Config {
	return &Config{
		Name: "r9c",

		Registry: RegistryConfig{
			MaxMembranes:      64,
			MaxChildren:       8,
			MaxObjects:        16,
			MaxFactors:        16,
			MaxTensorElements: 1 << 20,
			Seed:              0,
		},

		Logging: LoggingConfig{
			Level:   "info",
			File:    filepath.Join(".r9c", "logs", "r9c.log"),
			Console: false,
		},

		Shell: ShellConfig{
			Theme:        "dark",
			HistoryLimit: 500,
		},
	}
}

// DefaultPath returns the workspace config location.
func DefaultPath() string {
	return filepath.Join(".r9c", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; a present file overrides them field by field. Environment
// variables win over both.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("R9C_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("R9C_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if v := os.Getenv("R9C_MAX_MEMBRANES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Registry.MaxMembranes = n
		}
	}
	if v := os.Getenv("R9C_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Registry.Seed = n
		}
	}
	if theme := os.Getenv("R9C_THEME"); theme != "" {
		c.Shell.Theme = theme
	}
}

// validLevels lists the accepted logging levels.
var validLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	r := c.Registry
	if r.MaxMembranes < 1 || r.MaxChildren < 1 || r.MaxObjects < 1 || r.MaxTensorElements < 1 {
		return fmt.Errorf("registry caps must be positive: %+v", r)
	}
	if r.MaxFactors < 1 || r.MaxFactors > 16 {
		return fmt.Errorf("registry max_factors %d out of range 1..16", r.MaxFactors)
	}

	validLevel := false
	for _, l := range validLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, validLevels)
	}

	if c.Shell.Theme != "dark" && c.Shell.Theme != "light" {
		return fmt.Errorf("invalid shell theme: %s (valid: dark, light)", c.Shell.Theme)
	}
	if c.Shell.HistoryLimit < 0 {
		return fmt.Errorf("shell history_limit must not be negative: %d", c.Shell.HistoryLimit)
	}

	return nil
}
