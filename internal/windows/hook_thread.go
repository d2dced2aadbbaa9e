//go:build windows

package windows

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	sys "golang.org/x/sys/windows"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/timeouts"
)

var (
	ErrHookThreadStopped = errors.New("hook thread stopped")
	ErrHookCallTimeout   = errors.New("hook thread call timed out")
)

// hookThread owns a locked OS thread with a message queue. Out-of-context
// WinEvent hooks deliver their callbacks to the thread that installed them,
// and only while that thread pumps messages, so every install and unhook is
// marshalled onto it.
type hookThread struct {
	log   logger.LoggerInterface
	tid   uint32
	mu    sync.Mutex
	calls []func()
	done  chan struct{}
	stop  sync.Once
}

func startHookThread(log logger.LoggerInterface) (*hookThread, error) {
	t := &hookThread{
		log:  log,
		done: make(chan struct{}),
	}

	ready := make(chan uint32, 1)
	go t.run(ready)

	select {
	case tid := <-ready:
		t.tid = tid
		log.Debug("Hook thread started", "tid", tid)
		return t, nil
	case <-time.After(timeouts.HookThreadStartTimeout):
		return nil, fmt.Errorf("hook thread did not start within %v", timeouts.HookThreadStartTimeout)
	}
}

func (t *hookThread) run(ready chan<- uint32) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.done)

	// Force creation of the thread message queue before announcing the tid,
	// otherwise PostThreadMessage can fail for early callers.
	var msg MSG
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, PM_NOREMOVE)

	ready <- sys.GetCurrentThreadId()

	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)

		// 0 is WM_QUIT, -1 is an error
		if int32(ret) <= 0 {
			t.drain()
			t.log.Debug("Hook thread exiting", "tid", t.tid)
			return
		}

		if msg.Hwnd == 0 && msg.Message == wmRunCalls {
			t.drain()
			continue
		}

		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func (t *hookThread) drain() {
	t.mu.Lock()
	calls := t.calls
	t.calls = nil
	t.mu.Unlock()

	for _, fn := range calls {
		fn()
	}
}

// Do runs fn on the hook thread and waits for it to finish. If the wait
// times out, rollback is run on the hook thread once fn eventually
// completes, so work the caller has given up on can be undone.
func (t *hookThread) Do(fn func(), rollback func()) error {
	select {
	case <-t.done:
		return ErrHookThreadStopped
	default:
	}

	var (
		state     sync.Mutex
		abandoned bool
		completed bool
	)

	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)

		fn()

		state.Lock()
		completed = true
		gaveUp := abandoned
		state.Unlock()

		if gaveUp && rollback != nil {
			rollback()
		}
	}

	// giveUp reports false when fn already completed, in which case the
	// caller keeps its result.
	giveUp := func() bool {
		state.Lock()
		defer state.Unlock()

		if completed {
			return false
		}

		abandoned = true
		return true
	}

	t.mu.Lock()
	t.calls = append(t.calls, wrapped)
	t.mu.Unlock()

	ret, _, err := procPostThreadMessageW.Call(uintptr(t.tid), wmRunCalls, 0, 0)
	if ret == 0 && giveUp() {
		return fmt.Errorf("failed to wake hook thread: %w", err)
	}

	select {
	case <-finished:
		return nil
	case <-t.done:
		// The final drain runs before done is closed.
		if giveUp() {
			return ErrHookThreadStopped
		}

		<-finished
		return nil
	case <-time.After(timeouts.HookCallTimeout):
		if !giveUp() {
			<-finished
			return nil
		}

		t.log.Warn("Hook thread call timed out", "timeout", timeouts.HookCallTimeout)
		return ErrHookCallTimeout
	}
}

// Stop ends the message loop and waits for the thread to exit. Calls
// already queued still run.
func (t *hookThread) Stop() {
	t.stop.Do(func() {
		procPostThreadMessageW.Call(uintptr(t.tid), WM_QUIT, 0, 0)
	})

	select {
	case <-t.done:
	case <-time.After(timeouts.HookCallTimeout):
		t.log.Warn("Hook thread did not exit", "tid", t.tid)
	}
}
