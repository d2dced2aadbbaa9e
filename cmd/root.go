package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/winmon/internal/logger"
	"github.com/Norgate-AV/winmon/internal/version"
)

// RootCmd is the root command for the winmon CLI application.
var RootCmd = &cobra.Command{
	Use:          "winmon",
	Short:        "winmon - Observe move, resize, show and minimize events of other processes' windows",
	Version:      version.Get().String(),
	Args:         cobra.NoArgs,
	RunE:         runRoot,
	SilenceUsage: true, // Don't show usage on runtime errors
}

func init() {
	// Set custom version template to show full version info
	RootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	RootCmd.PersistentFlags().BoolP("verbose", "V", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolP("logs", "l", false, "print the current log file to stdout and exit")
	RootCmd.PersistentFlags().String("config", "", "config file (default %LOCALAPPDATA%\\winmon\\config.yaml or $WINMON_CONFIG)")

	RootCmd.AddCommand(privilegeCmd, rectCmd, watchCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := NewConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	if cfg.ShowLogs {
		return printLogs(cmd.OutOrStdout(), cfg)
	}

	return cmd.Help()
}

// printLogs writes the current log file to w
func printLogs(w io.Writer, cfg *Config) error {
	opts := logger.LoggerOptions{LogDir: cfg.LogDir}

	if err := logger.PrintLogFile(w, opts); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("log file does not exist: %s", logger.GetLogPath(opts))
		}

		return err
	}

	return nil
}

// initializeLogger creates a logger and logs startup information
func initializeLogger(cfg *Config) (logger.LoggerInterface, error) {
	log, err := logger.NewLogger(logger.LoggerOptions{
		Verbose:  cfg.Verbose,
		LogDir:   cfg.LogDir,
		Compress: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	log.Debug("Starting winmon",
		slog.String("version", version.Get().String()),
		slog.Any("args", os.Args[1:]),
	)

	return log, nil
}

// recoverPanic logs a panic with its stack and reports it on stderr
func recoverPanic(log logger.LoggerInterface) {
	if r := recover(); r != nil {
		log.Error("PANIC RECOVERED",
			slog.Any("panic", r),
			slog.String("stack", string(debug.Stack())),
		)

		fmt.Fprintf(os.Stderr, "\n*** PANIC: %v ***\n", r)
		fmt.Fprintf(os.Stderr, "Check log file for details\n")
	}
}
