package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

var watchCmd = &cobra.Command{
	Use:   "watch <hwnd>...",
	Short: "Stream window events until interrupted",
	Long: `Registers every given window and prints its events until interrupted.

Handles may be decimal or 0x-prefixed hex. A window that cannot be registered
is reported with its integer error code:

  1  no rights to observe other processes
  2  window is already registered
  3  owning application not found
  5  failed to create observer`,
	Args: validateHandles,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("format", "auto", "output format: auto, text or json")
	watchCmd.Flags().String("metrics-addr", "", "serve /metrics, /windows and /healthz on this address")
	watchCmd.Flags().Duration("prune-interval", 0, "periodically drop registrations of destroyed windows (0 disables)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ids, err := parseHandles(args)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	cleaned := make(chan struct{})
	defer func() {
		s.Close()
		close(cleaned)
	}()

	defer recoverPanic(s.log)

	out, err := newPrinter(cmd.OutOrStdout(), s.cfg.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setupConsoleHandler(s.log, stop, cleaned)

	registered := registerAll(s, ids, out)
	if registered == 0 {
		return errors.New("no window could be registered")
	}

	s.log.Info("Watching windows", slog.Int("count", registered))

	if s.cfg.MetricsAddr != "" {
		done, err := startStatusServer(ctx, s.cfg.MetricsAddr, newStatusRouter(s.manager, s.registry), s.log)
		if err != nil {
			return fmt.Errorf("failed to serve status on %s: %w", s.cfg.MetricsAddr, err)
		}

		defer func() {
			stop()
			<-done
		}()
	}

	if s.cfg.PruneInterval > 0 {
		go pruneLoop(ctx, s.manager, s.cfg.PruneInterval)
	}

	<-ctx.Done()
	s.log.Info("Stopping, unregistering windows")
	return nil
}

// registerAll registers ids in order and returns how many succeeded
func registerAll(s *session, ids []monitor.WindowID, out *printer) int {
	registered := 0

	for _, id := range ids {
		if err := s.manager.Register(id, out.Event); err != nil {
			s.log.Warn("Failed to register window",
				slog.Uint64("hwnd", uint64(id)),
				slog.Int("code", int(monitor.CodeOf(err))),
				slog.Any("error", err),
			)
			out.Failure(id, err)
			continue
		}

		registered++
	}

	return registered
}

// pruneLoop removes registrations of destroyed windows every interval
func pruneLoop(ctx context.Context, m *monitor.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}
