//go:build windows

package cmd

import (
	"log/slog"
	"time"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/timeouts"
	"github.com/Norgate-AV/winmon/internal/windows"
)

// setupConsoleHandler stops the session on console control events. The
// system terminates the process as soon as the handler returns for close,
// logoff and shutdown, so those wait for cleanup to finish first.
func setupConsoleHandler(log logger.LoggerInterface, stop func(), cleaned <-chan struct{}) {
	err := windows.OnConsoleCtrl(func(event windows.CtrlEvent) bool {
		log.Debug("Received console control event",
			slog.String("type", event.String()),
			slog.Uint64("code", uint64(event)),
		)

		stop()

		switch event {
		case windows.CtrlClose, windows.CtrlLogoff, windows.CtrlShutdown:
			select {
			case <-cleaned:
				log.Debug("Cleanup completed before console exit")
			case <-time.After(timeouts.HookCallTimeout):
				log.Warn("Cleanup did not finish before console exit")
			}
		}

		return true
	})
	if err != nil {
		log.Warn("Failed to install console control handler", slog.Any("error", err))
	}
}
