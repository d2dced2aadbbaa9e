// Package config loads the optional winmon YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Norgate-AV/winmon/internal/timeouts"
)

// EnvConfigPath overrides the default configuration file location.
const EnvConfigPath = "WINMON_CONFIG"

// Output formats of the watch command
const (
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds file-backed settings. Command-line flags take precedence.
type Config struct {
	Verbose       bool          `yaml:"verbose"`
	LogDir        string        `yaml:"log_dir"`
	QueueSize     int           `yaml:"queue_size"`
	Format        string        `yaml:"format"`
	MetricsAddr   string        `yaml:"metrics_addr"`
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		QueueSize: timeouts.DefaultQueueSize,
		Format:    FormatAuto,
	}
}

// DefaultPath returns the configuration file used when no path is given.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	base := os.Getenv("LOCALAPPDATA")
	if base == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			base = dir
		} else {
			base = os.TempDir()
		}
	}

	return filepath.Join(base, "winmon", "config.yaml")
}

// Load reads path, or DefaultPath when path is empty. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Format {
	case FormatAuto, FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}

	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}

	if c.PruneInterval < 0 {
		return fmt.Errorf("prune_interval must not be negative, got %v", c.PruneInterval)
	}

	return nil
}
