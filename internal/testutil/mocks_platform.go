package testutil

import (
	"errors"
	"sync"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

var ErrInstallFailed = errors.New("fake install failed")

// FakeHookClasses matches the number of event classes the Windows backend hooks.
const FakeHookClasses = 8

// FakeWindow is the state the fake platform reports for one window
type FakeWindow struct {
	Owner     monitor.Owner
	Rect      monitor.RawRect
	DPI       uint32
	Placement monitor.Placement
	Visible   bool
}

// InstallCall records one Install call
type InstallCall struct {
	ID    monitor.WindowID
	Owner monitor.Owner
}

// FakePlatform is an in-memory monitor.Platform that records all calls for
// verification and lets tests inject raw events.
type FakePlatform struct {
	mu sync.Mutex

	Windows      map[monitor.WindowID]*FakeWindow
	Privileged   bool
	InstallError error
	HookCount    int
	Classes      int

	InstallCalls []InstallCall
	hooks        map[monitor.WindowID]*FakeHookSet
}

func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		Windows:    make(map[monitor.WindowID]*FakeWindow),
		Privileged: true,
		HookCount:  FakeHookClasses,
		Classes:    FakeHookClasses,
		hooks:      make(map[monitor.WindowID]*FakeHookSet),
	}
}

// Helper methods for fluent configuration
func (p *FakePlatform) WithWindow(id monitor.WindowID, pid, tid uint32) *FakePlatform {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Windows[id] = &FakeWindow{
		Owner:     monitor.Owner{PID: pid, TID: tid},
		Rect:      monitor.RawRect{Left: 100, Top: 100, Right: 900, Bottom: 700},
		DPI:       monitor.BaseDPI,
		Placement: monitor.PlacementNormal,
		Visible:   true,
	}

	return p
}

func (p *FakePlatform) WithRect(id monitor.WindowID, rect monitor.RawRect, dpi uint32) *FakePlatform {
	p.update(id, func(w *FakeWindow) {
		w.Rect = rect
		w.DPI = dpi
	})

	return p
}

func (p *FakePlatform) WithPlacement(id monitor.WindowID, placement monitor.Placement) *FakePlatform {
	p.update(id, func(w *FakeWindow) { w.Placement = placement })
	return p
}

func (p *FakePlatform) WithVisible(id monitor.WindowID, visible bool) *FakePlatform {
	p.update(id, func(w *FakeWindow) { w.Visible = visible })
	return p
}

func (p *FakePlatform) WithPrivilege(privileged bool) *FakePlatform {
	p.mu.Lock()
	p.Privileged = privileged
	p.mu.Unlock()
	return p
}

func (p *FakePlatform) WithInstallError(err error) *FakePlatform {
	p.mu.Lock()
	p.InstallError = err
	p.mu.Unlock()
	return p
}

// WithHookClasses sets how many hook classes Install attempts, and installs
// all of them.
func (p *FakePlatform) WithHookClasses(n int) *FakePlatform {
	p.mu.Lock()
	p.Classes = n
	p.HookCount = n
	p.mu.Unlock()
	return p
}

func (p *FakePlatform) WithHookCount(n int) *FakePlatform {
	p.mu.Lock()
	p.HookCount = n
	p.mu.Unlock()
	return p
}

// Destroy makes the window disappear as if it had been closed
func (p *FakePlatform) Destroy(id monitor.WindowID) {
	p.mu.Lock()
	delete(p.Windows, id)
	p.mu.Unlock()
}

func (p *FakePlatform) update(id monitor.WindowID, fn func(*FakeWindow)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.Windows[id]; ok {
		fn(w)
	}
}

func (p *FakePlatform) window(id monitor.WindowID) (FakeWindow, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.Windows[id]
	if !ok {
		return FakeWindow{}, false
	}

	return *w, true
}

func (p *FakePlatform) Placement(id monitor.WindowID) monitor.Placement {
	w, _ := p.window(id)
	return w.Placement
}

func (p *FakePlatform) IsVisible(id monitor.WindowID) bool {
	w, _ := p.window(id)
	return w.Visible
}

func (p *FakePlatform) RawRect(id monitor.WindowID) (monitor.RawRect, bool) {
	w, ok := p.window(id)
	return w.Rect, ok
}

func (p *FakePlatform) DPI(id monitor.WindowID) uint32 {
	w, _ := p.window(id)
	return w.DPI
}

func (p *FakePlatform) Owner(id monitor.WindowID) (monitor.Owner, bool) {
	w, ok := p.window(id)
	return w.Owner, ok
}

func (p *FakePlatform) Exists(id monitor.WindowID) bool {
	_, ok := p.window(id)
	return ok
}

func (p *FakePlatform) CheckPrivilege() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Privileged
}

func (p *FakePlatform) Install(id monitor.WindowID, owner monitor.Owner, sink monitor.Sink) (monitor.HookSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.InstallCalls = append(p.InstallCalls, InstallCall{ID: id, Owner: owner})

	if p.InstallError != nil {
		return nil, p.InstallError
	}

	if p.HookCount <= 0 {
		return nil, ErrInstallFailed
	}

	hooks := &FakeHookSet{installed: p.HookCount, wanted: p.Classes, sink: sink}
	p.hooks[id] = hooks
	return hooks, nil
}

// Installs returns how many times Install was called
func (p *FakePlatform) Installs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.InstallCalls)
}

// Hooks returns the most recent hook set installed for id
func (p *FakePlatform) Hooks(id monitor.WindowID) *FakeHookSet {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hooks[id]
}

// Emit delivers a raw event through the hooks of id, as the native hook
// thread would. It reports false when no open hooks exist for id.
func (p *FakePlatform) Emit(id monitor.WindowID, raw monitor.RawEvent) bool {
	hooks := p.Hooks(id)
	if hooks == nil {
		return false
	}

	return hooks.emit(raw)
}

// FakeHookSet is the monitor.HookSet handed out by FakePlatform
type FakeHookSet struct {
	mu        sync.Mutex
	installed int
	wanted    int
	sink      monitor.Sink
	closed    int
	CloseErr  error
}

func (h *FakeHookSet) Installed() int {
	return h.installed
}

func (h *FakeHookSet) Wanted() int {
	return h.wanted
}

func (h *FakeHookSet) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed++
	h.sink = nil
	return h.CloseErr
}

// Closes returns how many times Close was called
func (h *FakeHookSet) Closes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

func (h *FakeHookSet) emit(raw monitor.RawEvent) bool {
	h.mu.Lock()
	sink := h.sink
	h.mu.Unlock()

	if sink == nil {
		return false
	}

	sink(raw)
	return true
}
