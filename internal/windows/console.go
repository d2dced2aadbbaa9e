//go:build windows

package windows

import (
	"sync"

	sys "golang.org/x/sys/windows"
)

// CtrlEvent is a console control event
type CtrlEvent uint32

// Console control event types
const (
	CtrlC        CtrlEvent = 0
	CtrlBreak    CtrlEvent = 1
	CtrlClose    CtrlEvent = 2
	CtrlLogoff   CtrlEvent = 5
	CtrlShutdown CtrlEvent = 6
)

func (e CtrlEvent) String() string {
	switch e {
	case CtrlC:
		return "CTRL_C"
	case CtrlBreak:
		return "CTRL_BREAK"
	case CtrlClose:
		return "CTRL_CLOSE"
	case CtrlLogoff:
		return "CTRL_LOGOFF"
	case CtrlShutdown:
		return "CTRL_SHUTDOWN"
	default:
		return "UNKNOWN"
	}
}

var (
	handlerMu       sync.RWMutex
	ctrlHandler     func(CtrlEvent) bool
	consoleCallback = sys.NewCallback(consoleCtrlProc)
)

// OnConsoleCtrl installs fn for Ctrl+C, window close, logoff and shutdown.
// fn returns true when it handled the event. A later call replaces fn.
func OnConsoleCtrl(fn func(CtrlEvent) bool) error {
	handlerMu.Lock()
	ctrlHandler = fn
	handlerMu.Unlock()

	ret, _, err := procSetConsoleCtrlHandler.Call(consoleCallback, 1)
	if ret == 0 {
		return err
	}

	return nil
}

// consoleCtrlProc runs on a thread created by the system. The process is
// terminated as soon as it returns for close, logoff and shutdown.
func consoleCtrlProc(ctrlType uint32) uintptr {
	handlerMu.RLock()
	fn := ctrlHandler
	handlerMu.RUnlock()

	if fn != nil && fn(CtrlEvent(ctrlType)) {
		return 1
	}

	return 0
}
