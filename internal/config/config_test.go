package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/winmon/internal/timeouts"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, timeouts.DefaultQueueSize, cfg.QueueSize)
	assert.Equal(t, FormatAuto, cfg.Format)
}

func TestLoad_ParsesAllFields(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
verbose: true
log_dir: C:\logs\winmon
queue_size: 64
format: json
metrics_addr: 127.0.0.1:9321
prune_interval: 30s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, `C:\logs\winmon`, cfg.LogDir)
	assert.Equal(t, 64, cfg.QueueSize)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, "127.0.0.1:9321", cfg.MetricsAddr)
	assert.Equal(t, 30*time.Second, cfg.PruneInterval)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "verbose: true\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Verbose)
	assert.Equal(t, timeouts.DefaultQueueSize, cfg.QueueSize)
	assert.Equal(t, FormatAuto, cfg.Format)
}

func TestLoad_InvalidFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		expectErr string
	}{
		{"malformed yaml", "queue_size: [1, 2\n", "failed to parse config"},
		{"unknown format", "format: xml\n", `unknown format "xml"`},
		{"zero queue", "queue_size: 0\n", "queue_size must be positive"},
		{"negative prune", "prune_interval: -5s\n", "prune_interval must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("LOCALAPPDATA", filepath.Join("C:", "Users", "test", "AppData", "Local"))

	assert.Equal(t, filepath.Join("C:", "Users", "test", "AppData", "Local", "winmon", "config.yaml"), DefaultPath())

	t.Setenv(EnvConfigPath, "/etc/winmon.yaml")
	assert.Equal(t, "/etc/winmon.yaml", DefaultPath())
}

func TestLoad_EmptyPathUsesEnvironment(t *testing.T) {
	path := writeConfig(t, "queue_size: 8\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.QueueSize)
}
