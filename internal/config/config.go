// Package config holds the portreach configuration model: scan defaults and
// logging settings, loadable from a YAML file with validation.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"portreach/internal/errors"
	"portreach/internal/logging"
)

// Default scan parameters, matching the CLI flag defaults.
const (
	DefaultTimeoutSeconds = 1.0
	DefaultConcurrency    = 500
	DefaultPorts          = "1-1024"
)

// Config represents the complete portreach configuration.
type Config struct {
	Scan    ScanConfig    `yaml:"scan" json:"scan"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ScanConfig holds scanning defaults applied when flags are not given.
type ScanConfig struct {
	// Per-connection timeout in seconds.
	TimeoutSeconds float64 `yaml:"timeout" json:"timeout" validate:"gt=0"`

	// Maximum simultaneous probes against the active host.
	Concurrency int `yaml:"concurrency" json:"concurrency" validate:"gte=1"`

	// Attempt banner grabbing on open ports.
	Banner bool `yaml:"banner" json:"banner"`

	// Default port expression when none is given on the command line.
	Ports string `yaml:"ports" json:"ports" validate:"required"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error).
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`

	// Log format (text, json).
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`

	// Log output (stdout, stderr, or a file path).
	Output string `yaml:"output" json:"output" validate:"required"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
			Concurrency:    DefaultConcurrency,
			Banner:         false,
			Ports:          DefaultPorts,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load loads configuration from a file, layering it over the defaults.
// A missing file is not an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.WrapConfigError(errors.CodeConfiguration, "failed to parse config file", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapConfigError(errors.CodeConfiguration, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.WrapConfigError(errors.CodeConfiguration, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapConfigError(errors.CodeConfiguration, "failed to write config file", err)
	}
	return nil
}

// Validate checks the configuration against its struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.WrapConfigError(errors.CodeValidation, "invalid configuration", err)
	}
	return nil
}

// Timeout returns the per-connection timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Scan.TimeoutSeconds * float64(time.Second))
}

// LoggingSettings converts the logging section to the logging package model.
func (c *Config) LoggingSettings() logging.Config {
	return logging.Config{
		Level:     logging.LogLevel(c.Logging.Level),
		Format:    logging.LogFormat(c.Logging.Format),
		Output:    c.Logging.Output,
		AddSource: c.Logging.Level == "debug",
	}
}
