// Package cmd implements the command-line interface for winmon.
package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/winmon/internal/config"
)

// Config holds all application configuration, file values overridden by
// flags the user set explicitly
type Config struct {
	Verbose       bool
	ShowLogs      bool
	ConfigPath    string
	LogDir        string
	QueueSize     int
	Format        string
	MetricsAddr   string
	PruneInterval time.Duration
}

// NewConfigFromFlags loads the config file and applies parsed command flags
func NewConfigFromFlags(cmd *cobra.Command) (*Config, error) {
	path := getStringFlag(cmd, "config")

	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Verbose:       file.Verbose,
		ShowLogs:      getBoolFlag(cmd, "logs"),
		ConfigPath:    path,
		LogDir:        file.LogDir,
		QueueSize:     file.QueueSize,
		Format:        file.Format,
		MetricsAddr:   file.MetricsAddr,
		PruneInterval: file.PruneInterval,
	}

	if flagChanged(cmd, "verbose") {
		cfg.Verbose = getBoolFlag(cmd, "verbose")
	}

	if flagChanged(cmd, "format") {
		cfg.Format = getStringFlag(cmd, "format")
	}

	if flagChanged(cmd, "metrics-addr") {
		cfg.MetricsAddr = getStringFlag(cmd, "metrics-addr")
	}

	if flagChanged(cmd, "prune-interval") {
		if d, err := cmd.Flags().GetDuration("prune-interval"); err == nil {
			cfg.PruneInterval = d
		}
	}

	return cfg, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Changed
	}

	return false
}

// getBoolFlag retrieves a boolean flag, checking both local and persistent flags
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		// Try persistent flags if not found in local flags
		val, _ = cmd.PersistentFlags().GetBool(name)
	}

	return val
}

// getStringFlag retrieves a string flag, checking both local and persistent flags
func getStringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		val, _ = cmd.PersistentFlags().GetString(name)
	}

	return val
}
