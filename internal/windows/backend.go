//go:build windows

package windows

import (
	"errors"
	"fmt"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
)

// Backend implements monitor.Platform on top of user32.
type Backend struct {
	log    logger.LoggerInterface
	thread *hookThread
}

var _ monitor.Platform = (*Backend)(nil)

// NewBackend starts the hook thread. Close must be called once every
// registration has been removed.
func NewBackend(log logger.LoggerInterface) (*Backend, error) {
	thread, err := startHookThread(log)
	if err != nil {
		return nil, err
	}

	return &Backend{log: log, thread: thread}, nil
}

// Close stops the hook thread.
func (b *Backend) Close() {
	b.thread.Stop()
}

func (b *Backend) Install(id monitor.WindowID, owner monitor.Owner, sink monitor.Sink) (monitor.HookSet, error) {
	slot := dispatchTable.Bind(sink)

	var (
		handles []uintptr
		failed  []error
	)

	err := b.thread.Do(func() {
		handles, failed = installHooks(slot, owner)
	}, func() {
		unhookAll(handles)
		dispatchTable.Release(slot)
	})
	if err != nil {
		// On timeout the rollback frees the slot once the install finishes.
		if !errors.Is(err, ErrHookCallTimeout) {
			dispatchTable.Release(slot)
		}

		return nil, fmt.Errorf("failed to install hooks: %w", err)
	}

	for _, e := range failed {
		b.log.Debug("Hook class not installed", "hwnd", uintptr(id), "error", e)
	}

	if len(handles) == 0 {
		dispatchTable.Release(slot)
		return nil, errors.Join(failed...)
	}

	b.log.Trace("Hooks installed",
		"hwnd", uintptr(id),
		"pid", owner.PID,
		"tid", owner.TID,
		"slot", slot,
		"count", len(handles),
	)

	return &hookSet{
		thread:  b.thread,
		log:     b.log,
		slot:    slot,
		handles: handles,
	}, nil
}

func (b *Backend) CheckPrivilege() bool {
	// Out-of-context hooks work for any window on the caller's desktop.
	// Elevation only widens access to elevated targets.
	b.log.Trace("Checking privilege", "elevated", IsElevated())
	return true
}

func (b *Backend) Owner(id monitor.WindowID) (monitor.Owner, bool) {
	pid, tid, ok := GetWindowOwner(uintptr(id))
	return monitor.Owner{PID: pid, TID: tid}, ok
}

func (b *Backend) Exists(id monitor.WindowID) bool {
	return IsWindow(uintptr(id))
}

func (b *Backend) Placement(id monitor.WindowID) monitor.Placement {
	wp, ok := GetWindowPlacement(uintptr(id))
	if !ok {
		return monitor.PlacementUnknown
	}

	return placementOf(wp.ShowCmd)
}

func (b *Backend) IsVisible(id monitor.WindowID) bool {
	return IsWindowVisible(uintptr(id))
}

func (b *Backend) RawRect(id monitor.WindowID) (monitor.RawRect, bool) {
	rect, ok := GetWindowRect(uintptr(id))
	if !ok {
		return monitor.RawRect{}, false
	}

	return monitor.RawRect{
		Left:   rect.Left,
		Top:    rect.Top,
		Right:  rect.Right,
		Bottom: rect.Bottom,
	}, true
}

func (b *Backend) DPI(id monitor.WindowID) uint32 {
	return GetDpiForWindow(uintptr(id))
}

// Describe returns the title and class name of a window.
func (b *Backend) Describe(id monitor.WindowID) (title, class string) {
	info := DescribeWindow(uintptr(id))
	return info.Title, info.Class
}
