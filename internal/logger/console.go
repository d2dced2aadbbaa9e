package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type levelStyle struct {
	prefix string
	color  *color.Color
}

var consoleStyles = map[slog.Level]levelStyle{
	slog.LevelError: {prefix: "ERROR: ", color: color.New(color.FgRed)},
	slog.LevelWarn:  {prefix: "WARNING: ", color: color.New(color.FgYellow)},
	slog.LevelDebug: {prefix: "VERBOSE: ", color: color.New(color.FgCyan)},
}

// ConsoleHandler writes one short line per record, without timestamps.
// Trace records never reach the console and debug records need verbose.
type ConsoleHandler struct {
	mu      *sync.Mutex
	writer  io.Writer
	verbose bool
	attrs   []string
}

func NewConsoleHandler(w io.Writer, verbose bool) *ConsoleHandler {
	return &ConsoleHandler{mu: &sync.Mutex{}, writer: w, verbose: verbose}
}

func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	switch {
	case level <= LevelTrace:
		return false
	case level == slog.LevelDebug:
		return h.verbose
	default:
		return true
	}
}

func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var line strings.Builder

	line.WriteString(r.Message)

	for _, attr := range h.attrs {
		line.WriteByte(' ')
		line.WriteString(attr)
	}

	r.Attrs(func(a slog.Attr) bool {
		line.WriteByte(' ')
		line.WriteString(formatAttr(a))
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	// Console write errors are not actionable
	style, ok := consoleStyles[r.Level]
	if !ok {
		_, _ = fmt.Fprintln(h.writer, line.String())
		return nil
	}

	_, _ = style.color.Fprintf(h.writer, "%s%s\n", style.prefix, line.String())
	return nil
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	next := *h
	next.attrs = make([]string, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)

	for _, a := range attrs {
		next.attrs = append(next.attrs, formatAttr(a))
	}

	return &next
}

// Groups are flattened on the console.
func (h *ConsoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

func formatAttr(a slog.Attr) string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value.Resolve())
}
