package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/Norgate-AV/winmon/internal/config"
	"github.com/Norgate-AV/winmon/internal/monitor"
)

// eventLine is the JSON form of one delivered event
type eventLine struct {
	Window monitor.WindowID  `json:"window"`
	Event  monitor.EventType `json:"event"`
	Name   string            `json:"name"`
	Rect   monitor.Rect      `json:"rect"`
}

// failureLine is the JSON form of a failed registration
type failureLine struct {
	Window monitor.WindowID  `json:"window"`
	Code   monitor.ErrorCode `json:"code"`
	Error  string            `json:"error"`
}

// rectLine is the JSON form of the rect command output
type rectLine struct {
	Window monitor.WindowID `json:"window"`
	Title  string           `json:"title,omitempty"`
	Class  string           `json:"class,omitempty"`
	Rect   monitor.Rect     `json:"rect"`
}

// printer writes command output in one format. Safe for concurrent use.
type printer struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
}

// resolveFormat picks text or json, auto meaning text on a terminal
func resolveFormat(format string, isTerminal bool) (string, error) {
	switch format {
	case "", config.FormatAuto:
		if isTerminal {
			return config.FormatText, nil
		}

		return config.FormatJSON, nil
	case config.FormatText, config.FormatJSON:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", format)
	}
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	isTerminal := false
	if f, ok := w.(*os.File); ok {
		isTerminal = term.IsTerminal(int(f.Fd()))
	}

	resolved, err := resolveFormat(format, isTerminal)
	if err != nil {
		return nil, err
	}

	return &printer{w: w, json: resolved == config.FormatJSON}, nil
}

var eventColors = map[monitor.EventType]*color.Color{
	monitor.Moved:     color.New(color.FgGreen),
	monitor.Moving:    color.New(color.FgCyan),
	monitor.Shown:     color.New(color.FgGreen, color.Bold),
	monitor.Hide:      color.New(color.FgYellow),
	monitor.Minimized: color.New(color.FgYellow, color.Bold),
	monitor.Maximized: color.New(color.FgBlue, color.Bold),
	monitor.Restore:   color.New(color.FgBlue),
}

func (p *printer) Event(id monitor.WindowID, event monitor.EventType, rect monitor.Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.json {
		p.writeJSON(eventLine{Window: id, Event: event, Name: event.String(), Rect: rect})
		return
	}

	name := fmt.Sprintf("%-9s", event.String())
	if c, ok := eventColors[event]; ok {
		name = c.Sprint(name)
	}

	fmt.Fprintf(p.w, "0x%08X  %s  %s\n", uintptr(id), name, formatRect(rect))
}

func (p *printer) Failure(id monitor.WindowID, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	code := monitor.CodeOf(err)
	if p.json {
		p.writeJSON(failureLine{Window: id, Code: code, Error: err.Error()})
		return
	}

	fmt.Fprintf(p.w, "0x%08X  %s  %d (%v)\n", uintptr(id), color.RedString("failed"), int(code), err)
}

func (p *printer) Rect(id monitor.WindowID, title, class string, rect monitor.Rect) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.json {
		p.writeJSON(rectLine{Window: id, Title: title, Class: class, Rect: rect})
		return
	}

	if title != "" || class != "" {
		fmt.Fprintf(p.w, "0x%08X  %q [%s]\n", uintptr(id), title, class)
	}

	fmt.Fprintln(p.w, formatRect(rect))
}

func (p *printer) writeJSON(v any) {
	if err := json.NewEncoder(p.w).Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to encode output: %v\n", err)
	}
}

func formatRect(r monitor.Rect) string {
	return fmt.Sprintf("left=%g top=%g right=%g bottom=%g (%gx%g)",
		r.Left, r.Top, r.Right, r.Bottom, r.Width(), r.Height())
}
