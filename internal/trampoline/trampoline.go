// Package trampoline routes context-free native callbacks back to the
// registration they belong to.
//
// Native hook APIs accept a bare function pointer, and Go callbacks created
// for them can never be freed. A single process-wide callback is therefore
// created once, and every invocation is resolved through a Table: the native
// handle passed to the callback identifies an attached slot, and the slot
// holds the sink bound at registration time.
//
// Lifecycle of a slot:
//
//	slot := table.Bind(sink)      // registration created
//	table.Attach(hook, slot)      // once per installed native hook
//	table.Mute(slot)              // optional, uninstall still pending
//	...                           // native hooks uninstalled
//	table.Release(slot)           // registration destroyed
//
// A slot must only be released after every native hook attached to it has
// been uninstalled, so the OS can no longer deliver through it.
package trampoline

import (
	"sync"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

// SlotID identifies one bound sink.
type SlotID uint64

type slot struct {
	sink    monitor.Sink
	handles map[uintptr]struct{}
}

// Table maps native hook handles to bound sinks.
type Table struct {
	mu      sync.RWMutex
	next    SlotID
	slots   map[SlotID]*slot
	handles map[uintptr]SlotID
	misses  uint64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		slots:   make(map[SlotID]*slot),
		handles: make(map[uintptr]SlotID),
	}
}

// Bind allocates a slot for sink. Slot ids are never reused.
func (t *Table) Bind(sink monitor.Sink) SlotID {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.slots[t.next] = &slot{sink: sink, handles: make(map[uintptr]struct{})}
	return t.next
}

// Attach routes callbacks carrying handle to id. It reports false when the
// slot does not exist or the handle is already attached elsewhere.
func (t *Table) Attach(handle uintptr, id SlotID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[id]
	if !ok || handle == 0 {
		return false
	}

	if owner, taken := t.handles[handle]; taken && owner != id {
		return false
	}

	t.handles[handle] = id
	s.handles[handle] = struct{}{}
	return true
}

// Detach stops routing handle. Unknown handles are ignored.
func (t *Table) Detach(handle uintptr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.handles[handle]
	if !ok {
		return
	}

	delete(t.handles, handle)
	if s, ok := t.slots[id]; ok {
		delete(s.handles, handle)
	}
}

// Release frees slot id and detaches every handle still attached to it.
// It returns the handles that were still attached.
func (t *Table) Release(id SlotID) []uintptr {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.slots[id]
	if !ok {
		return nil
	}

	var leftover []uintptr
	for handle := range s.handles {
		delete(t.handles, handle)
		leftover = append(leftover, handle)
	}

	delete(t.slots, id)
	return leftover
}

// Mute detaches the sink of slot id but keeps the slot and its handles
// until Release. Dispatches through a muted slot count as misses.
func (t *Table) Mute(id SlotID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.slots[id]; ok {
		s.sink = nil
	}
}

// Dispatch forwards ev to the sink attached to handle. The sink runs
// synchronously on the calling thread, outside the table lock. It reports
// false when no slot is attached to handle.
func (t *Table) Dispatch(handle uintptr, ev monitor.RawEvent) bool {
	t.mu.RLock()
	var sink monitor.Sink
	if id, ok := t.handles[handle]; ok {
		if s, ok := t.slots[id]; ok {
			sink = s.sink
		}
	}
	t.mu.RUnlock()

	if sink == nil {
		t.mu.Lock()
		t.misses++
		t.mu.Unlock()
		return false
	}

	sink(ev)
	return true
}

// Len returns the number of live slots.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.slots)
}

// Handles returns the number of attached native handles.
func (t *Table) Handles() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.handles)
}

// Misses returns how many dispatches found no attached slot.
func (t *Table) Misses() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.misses
}
