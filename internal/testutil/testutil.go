// Package testutil provides test utilities and mock implementations.
package testutil

import (
	"sync"
	"testing"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
)

// Event is one callback received by a Recorder
type Event struct {
	ID    monitor.WindowID
	Event monitor.EventType
	Rect  monitor.Rect
}

// Recorder collects callback invocations for verification
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Callback returns a monitor.Callback that appends to the recorder
func (r *Recorder) Callback() monitor.Callback {
	return func(id monitor.WindowID, event monitor.EventType, rect monitor.Rect) {
		r.mu.Lock()
		r.events = append(r.events, Event{ID: id, Event: event, Rect: rect})
		r.mu.Unlock()
	}
}

// Events returns a copy of everything recorded so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded callbacks
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Types returns the recorded event types in delivery order
func (r *Recorder) Types() []monitor.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]monitor.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event)
	}

	return out
}

// NewManager creates a manager over platform that is closed when the test
// ends
func NewManager(t *testing.T, platform monitor.Platform, opts monitor.Options) *monitor.Manager {
	t.Helper()

	m := monitor.NewManager(platform, logger.NewNoOpLogger(), opts)
	t.Cleanup(m.Close)
	return m
}
