//go:build !windows

package platform

import (
	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/monitor"
)

// unsupported is the backend for systems without WinEvent hooks. Every
// registration fails with NoRights.
type unsupported struct {
	log logger.LoggerInterface
}

// New returns a backend that reports no privilege.
func New(log logger.LoggerInterface) (Backend, error) {
	return &unsupported{log: log}, nil
}

func (u *unsupported) Close() {}

func (u *unsupported) CheckPrivilege() bool {
	u.log.Debug("Window hooks unavailable", "error", ErrUnsupported)
	return false
}

func (u *unsupported) Owner(monitor.WindowID) (monitor.Owner, bool) {
	return monitor.Owner{}, false
}

func (u *unsupported) Exists(monitor.WindowID) bool { return false }

func (u *unsupported) Install(monitor.WindowID, monitor.Owner, monitor.Sink) (monitor.HookSet, error) {
	return nil, ErrUnsupported
}

func (u *unsupported) Placement(monitor.WindowID) monitor.Placement {
	return monitor.PlacementUnknown
}

func (u *unsupported) IsVisible(monitor.WindowID) bool { return false }

func (u *unsupported) RawRect(monitor.WindowID) (monitor.RawRect, bool) {
	return monitor.RawRect{}, false
}

func (u *unsupported) DPI(monitor.WindowID) uint32 { return 0 }
