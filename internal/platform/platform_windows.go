//go:build windows

package platform

import (
	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/windows"
)

// New starts the Win32 backend.
func New(log logger.LoggerInterface) (Backend, error) {
	b, err := windows.NewBackend(log)
	if err != nil {
		return nil, err
	}

	return b, nil
}
