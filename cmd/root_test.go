package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/winmon/internal/config"
	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
	"github.com/Norgate-AV/winmon/internal/platform"
	"github.com/Norgate-AV/winmon/internal/testutil"
	"github.com/Norgate-AV/winmon/internal/version"
)

// fakeBackend adds the lifecycle method the session needs to the fake
// platform
type fakeBackend struct {
	*testutil.FakePlatform
	closed bool
}

func (f *fakeBackend) Close() { f.closed = true }

// useFakeBackend routes sessions to a fake platform and isolates config and
// log files in a temp dir
func useFakeBackend(t *testing.T, fake *testutil.FakePlatform) *fakeBackend {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("LOCALAPPDATA", dir)
	t.Setenv(config.EnvConfigPath, filepath.Join(dir, "absent.yaml"))

	backend := &fakeBackend{FakePlatform: fake}
	old := newBackend
	newBackend = func(logger.LoggerInterface) (platform.Backend, error) { return backend, nil }
	t.Cleanup(func() { newBackend = old })

	return backend
}

// execute runs RootCmd with args and returns what it wrote to stdout
func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	resetFlags()

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(ctx)
	return out.String(), err
}

// resetFlags resets all flags to their default values between tests
func resetFlags() {
	_ = RootCmd.PersistentFlags().Set("verbose", "false")
	_ = RootCmd.PersistentFlags().Set("logs", "false")
	_ = RootCmd.PersistentFlags().Set("config", "")
	_ = watchCmd.Flags().Set("format", "auto")
	_ = watchCmd.Flags().Set("metrics-addr", "")
	_ = watchCmd.Flags().Set("prune-interval", "0s")
	_ = rectCmd.Flags().Set("format", "auto")

	// Added lazily by cobra on first execution
	_ = RootCmd.Flags().Set("version", "false")
	_ = RootCmd.Flags().Set("help", "false")
}

func TestParseHandle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		expected monitor.WindowID
		wantErr  bool
	}{
		{in: "1001", expected: 1001},
		{in: "0x3E9", expected: 1001},
		{in: "0X3e9", expected: 1001},
		{in: " 66 ", expected: 66},
		{in: "0", wantErr: true},
		{in: "0x", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "window", wantErr: true},
		{in: "0xZZ", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		id, err := parseHandle(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}

		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.expected, id, "input %q", tt.in)
	}
}

func TestParseHandles_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	ids, err := parseHandles([]string{"1001", "0x7D2"})
	require.NoError(t, err)
	assert.Equal(t, []monitor.WindowID{1001, 2002}, ids)

	_, err = parseHandles([]string{"1001", "0x3E9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestValidateHandles(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{}

	assert.NoError(t, validateHandles(cmd, []string{"1001", "2002"}))
	assert.Error(t, validateHandles(cmd, nil))
	assert.Error(t, validateHandles(cmd, []string{"1001", "nope"}))

	assert.NoError(t, validateHandle(cmd, []string{"0x3E9"}))
	err := validateHandle(cmd, []string{"1", "2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s), received 2")
}

func TestResolveFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format   string
		terminal bool
		expected string
	}{
		{config.FormatAuto, true, config.FormatText},
		{config.FormatAuto, false, config.FormatJSON},
		{"", false, config.FormatJSON},
		{config.FormatText, false, config.FormatText},
		{config.FormatJSON, true, config.FormatJSON},
	}

	for _, tt := range tests {
		got, err := resolveFormat(tt.format, tt.terminal)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "format %q terminal %v", tt.format, tt.terminal)
	}

	_, err := resolveFormat("xml", true)
	assert.Error(t, err)
}

func TestPrinter_JSONEvent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p, err := newPrinter(&buf, config.FormatJSON)
	require.NoError(t, err)

	p.Event(1001, monitor.Moved, monitor.Rect{Left: 1, Top: 2, Right: 3.5, Bottom: 4})

	assert.Equal(t,
		`{"window":1001,"event":3,"name":"Moved","rect":{"left":1,"top":2,"right":3.5,"bottom":4}}`+"\n",
		buf.String())
}

func TestPrinter_JSONFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p, err := newPrinter(&buf, config.FormatJSON)
	require.NoError(t, err)

	p.Failure(2002, monitor.ApplicationNotFound)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(2002), line["window"])
	assert.Equal(t, float64(3), line["code"])
}

func TestPrinter_Text(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	p, err := newPrinter(&buf, config.FormatText)
	require.NoError(t, err)

	p.Event(1001, monitor.Minimized, monitor.Rect{Right: 800, Bottom: 600})
	p.Failure(2002, monitor.ApplicationNotFound)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0x000003E9  Minimized  left=0 top=0 right=800 bottom=600 (800x600)", lines[0])
	assert.Equal(t, "0x000007D2  failed  3 (owning application not found)", lines[1])
}

func TestNewConfigFromFlags_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("verbose: true\nformat: text\nqueue_size: 16\nmetrics_addr: 127.0.0.1:1\n"), 0o644))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().BoolP("verbose", "V", false, "")
	cmd.Flags().BoolP("logs", "l", false, "")
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("format", "auto", "")
	cmd.Flags().String("metrics-addr", "", "")
	cmd.Flags().Duration("prune-interval", 0, "")

	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--format", "json", "--prune-interval", "1m"}))

	cfg, err := NewConfigFromFlags(cmd)
	require.NoError(t, err)

	assert.True(t, cfg.Verbose, "file value kept when flag not set")
	assert.Equal(t, config.FormatJSON, cfg.Format, "flag overrides file")
	assert.Equal(t, 16, cfg.QueueSize)
	assert.Equal(t, "127.0.0.1:1", cfg.MetricsAddr)
	assert.Equal(t, "1m0s", cfg.PruneInterval.String())
	assert.False(t, cfg.ShowLogs)

	require.NoError(t, cmd.ParseFlags([]string{"--verbose=false"}))
	cfg, err = NewConfigFromFlags(cmd)
	require.NoError(t, err)
	assert.False(t, cfg.Verbose, "explicit flag overrides file")
}

func TestNewConfigFromFlags_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: xml\n"), 0o644))

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--config", path}))

	_, err := NewConfigFromFlags(cmd)
	assert.Error(t, err)
}

func TestPrintLogs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "Test log content\nLine 2\nLine 3"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "winmon.log"), []byte(content), 0o644))

	var buf bytes.Buffer
	require.NoError(t, printLogs(&buf, &Config{LogDir: dir}))
	assert.Equal(t, content, buf.String())

	err := printLogs(&buf, &Config{LogDir: filepath.Join(dir, "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file does not exist")
}

func TestRootCmd_Version(t *testing.T) {
	useFakeBackend(t, testutil.NewFakePlatform())

	output, err := execute(t, context.Background(), "--version")
	require.NoError(t, err)
	assert.Contains(t, output, version.GetVersion())
	assert.Contains(t, output, "commit:")
}

func TestRootCmd_Help(t *testing.T) {
	useFakeBackend(t, testutil.NewFakePlatform())

	output, err := execute(t, context.Background(), "--help")
	require.NoError(t, err)

	assert.Contains(t, output, "winmon")
	assert.Contains(t, output, "watch")
	assert.Contains(t, output, "rect")
	assert.Contains(t, output, "privilege")
	assert.Contains(t, output, "--verbose")
	assert.Contains(t, output, "--logs")
	assert.Contains(t, output, "--config")
}

func TestRootCmd_InvalidFlag(t *testing.T) {
	useFakeBackend(t, testutil.NewFakePlatform())

	output, err := execute(t, context.Background(), "--invalid-flag")
	require.Error(t, err)
	assert.Contains(t, output, "unknown flag")
}

func TestPrivilegeCmd(t *testing.T) {
	useFakeBackend(t, testutil.NewFakePlatform())

	output, err := execute(t, context.Background(), "privilege")
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(output))
}

func TestPrivilegeCmd_Denied(t *testing.T) {
	useFakeBackend(t, testutil.NewFakePlatform().WithPrivilege(false))

	output, err := execute(t, context.Background(), "privilege")
	require.ErrorIs(t, err, monitor.NoRights)
	assert.True(t, strings.HasPrefix(output, "false"))
}

func TestRectCmd_JSON(t *testing.T) {
	fake := testutil.NewFakePlatform().
		WithWindow(1001, 1, 2).
		WithRect(1001, monitor.RawRect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}, 192)
	backend := useFakeBackend(t, fake)

	output, err := execute(t, context.Background(), "rect", "0x3E9", "--format", "json")
	require.NoError(t, err)

	var line rectLine
	require.NoError(t, json.Unmarshal([]byte(output), &line))
	assert.Equal(t, monitor.WindowID(1001), line.Window)
	assert.Equal(t, monitor.Rect{Right: 960, Bottom: 540}, line.Rect)
	assert.True(t, backend.closed)
	assert.Zero(t, fake.Installs(), "rect does not register")
}

func TestRectCmd_MissingWindow(t *testing.T) {
	useFakeBackend(t, testutil.NewFakePlatform())

	_, err := execute(t, context.Background(), "rect", "2002", "--format", "json")
	require.ErrorIs(t, err, monitor.WindowNotFound)
}

func TestWatchCmd_StreamsUntilCancelled(t *testing.T) {
	fake := testutil.NewFakePlatform().WithWindow(1001, 4242, 77)
	backend := useFakeBackend(t, fake)

	// An already cancelled context registers, drains and tears down.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	output, err := execute(t, ctx, "watch", "1001", "2002", "--format", "json")
	require.NoError(t, err)

	// The event line races the failure line, so match them by content.
	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)

	var (
		failure failureLine
		event   eventLine
	)

	for _, line := range lines {
		if strings.Contains(line, `"code"`) {
			require.NoError(t, json.Unmarshal([]byte(line), &failure))
		} else {
			require.NoError(t, json.Unmarshal([]byte(line), &event))
		}
	}

	assert.Equal(t, monitor.WindowID(2002), failure.Window)
	assert.Equal(t, monitor.ApplicationNotFound, failure.Code)

	assert.Equal(t, monitor.WindowID(1001), event.Window)
	assert.Equal(t, monitor.Moved, event.Event)
	assert.Equal(t, "Moved", event.Name)
	assert.Equal(t, monitor.Rect{Left: 100, Top: 100, Right: 900, Bottom: 700}, event.Rect)

	assert.Equal(t, 1, fake.Hooks(1001).Closes(), "hooks removed on exit")
	assert.True(t, backend.closed)
}

func TestWatchCmd_NothingRegistered(t *testing.T) {
	useFakeBackend(t, testutil.NewFakePlatform())

	_, err := execute(t, context.Background(), "watch", "2002", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no window could be registered")
}
