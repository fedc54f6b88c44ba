package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kbukum/rex/errors"
)

// EnvPrefix prefixes environment variables read into RunnerConfig, e.g.
// REX_CONTEXT or REX_LOGGING_LEVEL.
const EnvPrefix = "REX"

// FileSystem abstracts file lookups for testing.
type FileSystem interface {
	Exists(path string) bool
	Getwd() (string, error)
	UserConfigDir() (string, error)
}

// RealFileSystem implements FileSystem using the os package.
type RealFileSystem struct{}

func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (RealFileSystem) Getwd() (string, error) { return os.Getwd() }

func (RealFileSystem) UserConfigDir() (string, error) { return os.UserConfigDir() }

// Resolver finds the runner config file.
type Resolver struct {
	FileSystem FileSystem
}

// FindConfigFile searches cwd/.rex, then the user config dir, for
// config.yaml or config.yml. It returns "" when none exists.
func (r *Resolver) FindConfigFile(cwd string) string {
	var dirs []string
	if cwd != "" {
		dirs = append(dirs, filepath.Join(cwd, ".rex"))
	}
	if dir, err := r.FileSystem.UserConfigDir(); err == nil && dir != "" {
		dirs = append(dirs, filepath.Join(dir, "rex"))
	}

	for _, dir := range dirs {
		for _, name := range []string{"config.yaml", "config.yml"} {
			path := filepath.Join(dir, name)
			if r.FileSystem.Exists(path) {
				return path
			}
		}
	}
	return ""
}

// LoaderConfig holds loader dependencies and overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	Flags      *pflag.FlagSet
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithFlags binds command-line flags. Flags the user set override every
// other source.
func WithFlags(flags *pflag.FlagSet) LoaderOption {
	return func(lc *LoaderConfig) { lc.Flags = flags }
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"file":          "file",
	"cwd":           "cwd",
	"context":       "context",
	"timeout":       "timeout",
	"unit-timeout":  "unit_timeout",
	"env":           "env",
	"env-file":      "env_files",
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"no-color":      "logging.no_color",
	"trace":         "telemetry.enabled",
	"metrics":       "telemetry.metrics",
	"otlp-endpoint": "telemetry.endpoint",
}

// Load builds the runner configuration, applies defaults and validates it.
func Load(opts ...LoaderOption) (*RunnerConfig, error) {
	lc := LoaderConfig{FileSystem: RealFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if lc.Flags != nil {
		for name, key := range flagKeys {
			if f := lc.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.InvalidConfig("flag "+name, err.Error())
				}
			}
		}
	}

	file := lc.ConfigFile
	if file == "" {
		cwd := v.GetString("cwd")
		if cwd == "" {
			cwd, _ = lc.FileSystem.Getwd()
		}
		file = (&Resolver{FileSystem: lc.FileSystem}).FindConfigFile(cwd)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.InvalidConfig(file, err.Error()).WithCause(err)
		}
	}

	var cfg RunnerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal runner config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can populate it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("file", "")
	v.SetDefault("cwd", "")
	v.SetDefault("context", DefaultContext)
	v.SetDefault("timeout", 0)
	v.SetDefault("unit_timeout", 180)
	v.SetDefault("env", []string{})
	v.SetDefault("env_files", []string{})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.no_color", false)
	v.SetDefault("logging.timestamp", false)
	v.SetDefault("logging.caller", false)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.metrics", false)
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("telemetry.sample_rate", 1.0)
}
