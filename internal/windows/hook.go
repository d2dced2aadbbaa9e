//go:build windows

package windows

import (
	"errors"
	"fmt"
	"sync"

	sys "golang.org/x/sys/windows"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
	"github.com/Norgate-AV/winmon/internal/trampoline"
)

// Callbacks created with NewCallback are never released, so one procedure
// serves every hook and resolves its registration through dispatchTable.
var (
	dispatchTable    = trampoline.NewTable()
	winEventCallback = sys.NewCallback(winEventProc)
)

func winEventProc(hook, event, hwnd, idObject, idChild, idEventThread, eventTime uintptr) uintptr {
	dispatchTable.Dispatch(hook, translateEvent(uint32(event), int32(idObject)))
	return 0
}

// hookSet is the group of native hooks installed for one window.
type hookSet struct {
	thread  *hookThread
	log     logger.LoggerInterface
	slot    trampoline.SlotID
	handles []uintptr

	closeOnce sync.Once
	closeErr  error
}

func (h *hookSet) Installed() int {
	return len(h.handles)
}

func (h *hookSet) Wanted() int {
	return len(winEvents)
}

// Close removes every native hook on the hook thread, then frees the
// dispatch slot. Once Close returns the sink is never invoked again.
// When the hook thread is slow the slot is freed there, after the unhook,
// and the sink is detached at once so late callbacks count as misses.
func (h *hookSet) Close() error {
	h.closeOnce.Do(func() {
		var failed []error

		err := h.thread.Do(func() {
			failed = unhookAll(h.handles)
		}, func() {
			h.release()
		})

		switch {
		case err == nil:
			if len(failed) > 0 {
				h.closeErr = errors.Join(failed...)
			}
			h.release()
		case errors.Is(err, ErrHookThreadStopped):
			h.closeErr = fmt.Errorf("failed to remove hooks: %w", err)
			h.release()
		default:
			h.closeErr = fmt.Errorf("failed to remove hooks: %w", err)
			dispatchTable.Mute(h.slot)
		}
	})

	return h.closeErr
}

func (h *hookSet) release() {
	if leftover := dispatchTable.Release(h.slot); len(leftover) > 0 {
		h.log.Warn("Released slot with hooks still attached", "slot", h.slot, "handles", len(leftover))
	}
}

// installHooks runs on the hook thread. One hook per event class is scoped
// to the owner process and thread, out of context and skipping this
// process.
func installHooks(slot trampoline.SlotID, owner monitor.Owner) ([]uintptr, []error) {
	var (
		handles []uintptr
		failed  []error
	)

	for _, event := range winEvents {
		handle, _, err := procSetWinEventHook.Call(
			uintptr(event),
			uintptr(event),
			0,
			winEventCallback,
			uintptr(owner.PID),
			uintptr(owner.TID),
			WINEVENT_OUTOFCONTEXT|WINEVENT_SKIPOWNPROCESS,
		)

		if handle == 0 {
			failed = append(failed, fmt.Errorf("SetWinEventHook(0x%04X): %w", event, err))
			continue
		}

		if !dispatchTable.Attach(handle, slot) {
			procUnhookWinEvent.Call(handle)
			failed = append(failed, fmt.Errorf("hook handle 0x%X already attached", handle))
			continue
		}

		handles = append(handles, handle)
	}

	return handles, failed
}

// unhookAll runs on the hook thread.
func unhookAll(handles []uintptr) []error {
	var failed []error

	for _, handle := range handles {
		dispatchTable.Detach(handle)

		if ret, _, err := procUnhookWinEvent.Call(handle); ret == 0 {
			failed = append(failed, fmt.Errorf("UnhookWinEvent(0x%X): %w", handle, err))
		}
	}

	return failed
}
