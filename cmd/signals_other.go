//go:build !windows

package cmd

import "github.com/Norgate-AV/winmon/internal/logger"

// setupConsoleHandler is a no-op where the process only receives signals.
func setupConsoleHandler(logger.LoggerInterface, func(), <-chan struct{}) {}
