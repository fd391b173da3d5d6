package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all credal configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Output rendering
	Output OutputConfig `yaml:"output"`

	// Watch mode
	Watch WatchConfig `yaml:"watch"`

	// Downstream solver hook
	Solver SolverConfig `yaml:"solver"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig configures how normalized programs are printed.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json
	Color  bool   `yaml:"color"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce   string   `yaml:"debounce"`
	Extensions []string `yaml:"extensions"`
}

// SolverConfig points at the external solver the normalized program is
// handed to. Solving itself happens outside this tool; the config only
// knows where the program would go.
type SolverConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "credal",
		Version: "0.2.0",

		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},

		Watch: WatchConfig{
			Debounce:   "500ms",
			Extensions: []string{".plp", ".lp"},
		},

		Solver: SolverConfig{
			Timeout: "30s",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing config file is not an error, run on defaults.
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

// Save saves configuration to a YAML file.
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

// applyEnvOverrides applies CREDAL_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if format := os.Getenv("CREDAL_OUTPUT_FORMAT"); format != "" {
		c.Output.Format = format
	}
	if os.Getenv("CREDAL_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
		c.Output.Color = false
	}
	if d := os.Getenv("CREDAL_WATCH_DEBOUNCE"); d != "" {
		c.Watch.Debounce = d
	}
	if cmd := os.Getenv("CREDAL_SOLVER"); cmd != "" {
		c.Solver.Command = cmd
	}
	if level := os.Getenv("CREDAL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// ValidFormats lists all supported output formats.
var ValidFormats = []string{"text", "json"}

// ValidLogLevels lists all supported logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validFormat := false
	for _, f := range ValidFormats {
		if c.Output.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
		return fmt.Errorf("invalid watch debounce: %w", err)
	}

	return nil
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// GetSolverTimeout returns the solver timeout as a duration.
func (c *Config) GetSolverTimeout() time.Duration {
	d, err := time.ParseDuration(c.Solver.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// WatchesExtension reports whether the watcher should react to a file.
func (c *Config) WatchesExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Watch.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
