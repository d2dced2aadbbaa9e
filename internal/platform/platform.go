// Package platform selects the native backend of the window monitor for
// the running operating system.
package platform

import (
	"errors"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

// ErrUnsupported is returned by backends that cannot observe windows.
var ErrUnsupported = errors.New("window hooks are not supported on this platform")

// Backend is a monitor.Platform that owns native resources.
type Backend interface {
	monitor.Platform
	Close()
}

// Describer is implemented by backends that can report diagnostic details
// about a window.
type Describer interface {
	Describe(id monitor.WindowID) (title, class string)
}
