package config

import (
	"fmt"

	"github.com/kbukum/rex/logger"
	"github.com/kbukum/rex/validation"
)

// DefaultContext is the context name used when none is given.
const DefaultContext = "local"

// RunnerConfig configures one rex invocation. Values come from defaults,
// .rex/config.yaml, REX_* environment variables and command-line flags, in
// increasing precedence.
type RunnerConfig struct {
	// File is the rexfile path. Empty searches the working directory.
	File string `yaml:"file" mapstructure:"file"`
	Cwd  string `yaml:"cwd" mapstructure:"cwd"`
	// Context names the environment the run targets, e.g. local or ci.
	Context string `yaml:"context" mapstructure:"context" validate:"required"`
	// Timeout bounds the whole run in seconds. Zero means no bound.
	Timeout int `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// UnitTimeout is the default unit timeout in seconds.
	UnitTimeout int `yaml:"unit_timeout" mapstructure:"unit_timeout" validate:"gte=0"`
	// Env holds KEY=VALUE pairs applied over the env files.
	Env      []string `yaml:"env" mapstructure:"env"`
	EnvFiles []string `yaml:"env_files" mapstructure:"env_files"`

	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Metrics    bool    `yaml:"metrics" mapstructure:"metrics"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset fields.
func (c *RunnerConfig) ApplyDefaults() {
	if c.Context == "" {
		c.Context = DefaultContext
	}
	if c.UnitTimeout == 0 {
		c.UnitTimeout = 180
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration after defaults are applied.
func (c *RunnerConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
