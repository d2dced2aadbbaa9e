// Package logger writes every record to a rotating file and the
// interesting ones to the console.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the log file.
const (
	DefaultLogMaxSize    = 5 // megabytes
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 28 // days

	// LevelTrace sits below Debug and is only written to the file. Raw
	// native window events are logged at this level.
	LevelTrace = slog.LevelDebug - 4

	appName = "winmon"
)

// LoggerInterface is what the rest of winmon logs through.
type LoggerInterface interface {
	// Trace never reaches the console.
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Close()
	GetLogPath() string
}

type LoggerOptions struct {
	Verbose bool
	// LogDir defaults to %LOCALAPPDATA%\winmon.
	LogDir     string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
	// Console defaults to stderr so stdout stays free for events.
	Console io.Writer
}

func (o *LoggerOptions) applyDefaults() {
	if o.MaxSize == 0 {
		o.MaxSize = DefaultLogMaxSize
	}

	if o.MaxBackups == 0 {
		o.MaxBackups = DefaultLogMaxBackups
	}

	if o.MaxAge == 0 {
		o.MaxAge = DefaultLogMaxAge
	}

	if o.Console == nil {
		o.Console = os.Stderr
	}
}

// GetLogPath resolves the log file location for opts.
func GetLogPath(opts LoggerOptions) string {
	dir := opts.LogDir
	if dir == "" {
		dir = filepath.Join(localAppData(), appName)
	}

	return filepath.Join(dir, appName+".log")
}

func localAppData() string {
	if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
		return dir
	}

	if profile := os.Getenv("USERPROFILE"); profile != "" {
		return filepath.Join(profile, "AppData", "Local")
	}

	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}

	return os.TempDir()
}

// PrintLogFile copies the log file for opts to w, or to stdout when w is nil.
func PrintLogFile(w io.Writer, opts LoggerOptions) error {
	if w == nil {
		w = os.Stdout
	}

	path := GetLogPath(opts)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}

	return nil
}

// Logger sends each record to the file and console handlers.
type Logger struct {
	slog    *slog.Logger
	rotator *lumberjack.Logger
	path    string
}

func NewLogger(opts LoggerOptions) (*Logger, error) {
	opts.applyDefaults()
	path := GetLogPath(opts)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
	}

	handler := fanout{
		newFileHandler(rotator),
		NewConsoleHandler(opts.Console, opts.Verbose),
	}

	return &Logger{
		slog:    slog.New(handler),
		rotator: rotator,
		path:    path,
	}, nil
}

// newFileHandler records every level down to trace, naming the custom level.
func newFileHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: LevelTrace,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key != slog.LevelKey {
				return a
			}

			if level, ok := a.Value.Any().(slog.Level); ok && level == LevelTrace {
				a.Value = slog.StringValue("TRACE")
			}

			return a
		},
	})
}

// Close flushes and closes the log file.
func (l *Logger) Close() {
	if l.rotator == nil {
		return
	}

	if err := l.rotator.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to close log file: %v\n", err)
	}
}

func (l *Logger) GetLogPath() string {
	return l.path
}

func (l *Logger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args) }
func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *Logger) log(level slog.Level, msg string, args []any) {
	l.slog.Log(context.Background(), level, msg, args...)
}

// fanout hands each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error

	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}

		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithAttrs(attrs)
	}

	return next
}

func (f fanout) WithGroup(name string) slog.Handler {
	next := make(fanout, len(f))
	for i, h := range f {
		next[i] = h.WithGroup(name)
	}

	return next
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

func (*NoOpLogger) Trace(string, ...any) {}
func (*NoOpLogger) Debug(string, ...any) {}
func (*NoOpLogger) Info(string, ...any)  {}
func (*NoOpLogger) Warn(string, ...any)  {}
func (*NoOpLogger) Error(string, ...any) {}
func (*NoOpLogger) Close()               {}
func (*NoOpLogger) GetLogPath() string   { return "" }
