package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/winmon/internal/monitor"
	"github.com/Norgate-AV/winmon/internal/platform"
)

var rectCmd = &cobra.Command{
	Use:   "rect <hwnd>",
	Short: "Print the rectangle of a window in 96-DPI units",
	Args:  validateHandle,
	RunE:  runRect,
}

func init() {
	rectCmd.Flags().String("format", "auto", "output format: auto, text or json")
}

func runRect(cmd *cobra.Command, args []string) error {
	id, err := parseHandle(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	defer s.Close()

	out, err := newPrinter(cmd.OutOrStdout(), s.cfg.Format)
	if err != nil {
		return err
	}

	if !s.backend.Exists(id) {
		s.log.Debug("Window not found", slog.Uint64("hwnd", uint64(id)))
		return monitor.WindowNotFound
	}

	var title, class string
	if d, ok := s.backend.(platform.Describer); ok {
		title, class = d.Describe(id)
	}

	out.Rect(id, title, class, s.manager.QueryRect(id))
	return nil
}
