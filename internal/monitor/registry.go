package monitor

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Registration associates one window with its native hooks and consumer.
type Registration struct {
	ID        WindowID
	Owner     Owner
	Session   uuid.UUID
	CreatedAt time.Time

	hooks    HookSet
	callback Callback
	closed   atomic.Bool

	// inflight is held by the consumer while a callback runs.
	inflight sync.Mutex

	// Events raised before the initial snapshot is queued wait in pending.
	gate    sync.Mutex
	live    bool
	pending []delivery
}

// Closed reports whether the registration has been torn down.
func (r *Registration) Closed() bool {
	return r.closed.Load()
}

// hold parks an event until the registration goes live. It reports false
// when the caller should deliver the event itself.
func (r *Registration) hold(event EventType, rect Rect) bool {
	r.gate.Lock()
	defer r.gate.Unlock()

	if r.live {
		return false
	}

	r.pending = append(r.pending, delivery{reg: r, event: event, rect: rect})
	return true
}

// goLive hands first and then every held event to deliver, in order.
// Later events bypass the gate.
func (r *Registration) goLive(first delivery, deliver func(delivery)) {
	r.gate.Lock()
	defer r.gate.Unlock()

	deliver(first)
	for _, d := range r.pending {
		deliver(d)
	}

	r.pending = nil
	r.live = true
}

// Registry is the process-resident table of monitored windows.
// At most one Registration exists per WindowID.
type Registry struct {
	mu      sync.Mutex
	entries map[WindowID]*Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[WindowID]*Registration)}
}

// Lookup returns the registration for id, if any.
func (r *Registry) Lookup(id WindowID) (*Registration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.entries[id]
	return reg, ok
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// IDs returns the registered window ids in ascending order.
func (r *Registry) IDs() []WindowID {
	r.mu.Lock()
	ids := make([]WindowID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	slices.Sort(ids)
	return ids
}

// insert stores reg unless its id is taken. Callers hold r.mu.
func (r *Registry) insert(reg *Registration) bool {
	if _, exists := r.entries[reg.ID]; exists {
		return false
	}

	r.entries[reg.ID] = reg
	return true
}

// remove erases and returns the entry for id. Callers hold r.mu.
func (r *Registry) remove(id WindowID) (*Registration, bool) {
	reg, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}

	return reg, ok
}
