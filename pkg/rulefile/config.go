package rulefile

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the tool settings that can be kept in a YAML file.
type Config struct {
	Strict      bool   `yaml:"strict"`
	Workers     int    `yaml:"workers"`
	LogLevel    string `yaml:"log_level"`
	Color       bool   `yaml:"color"`
	HistoryFile string `yaml:"history_file"`
}

// DefaultConfig returns the settings used when no config file is given.
func DefaultConfig() *Config {
	return &Config{
		Workers:     runtime.GOMAXPROCS(0),
		LogLevel:    "warn",
		Color:       true,
		HistoryFile: ".soundchanger_history",
	}
}

// LoadConfig reads a YAML config file. Settings it does not mention keep
// their defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML in config file '%s': %w", filename, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", filename, err)
	}
	return cfg, nil
}

// Validate checks the settings for values the tool cannot use.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	return ParseLevel(c.LogLevel)
}

// ParseLevel parses debug, info, warn or error (any case).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// YAML renders the config, for --make-config.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return string(data), nil
}
