package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

// parseHandle accepts a window handle in decimal or 0x-prefixed hex
func parseHandle(s string) (monitor.WindowID, error) {
	s = strings.TrimSpace(s)

	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}

	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window handle %q", s)
	}

	return monitor.WindowID(v), nil
}

// parseHandles parses every argument, rejecting duplicates
func parseHandles(args []string) ([]monitor.WindowID, error) {
	seen := make(map[monitor.WindowID]bool, len(args))
	ids := make([]monitor.WindowID, 0, len(args))

	for _, arg := range args {
		id, err := parseHandle(arg)
		if err != nil {
			return nil, err
		}

		if seen[id] {
			return nil, fmt.Errorf("window handle %s given more than once", arg)
		}

		seen[id] = true
		ids = append(ids, id)
	}

	return ids, nil
}

// validateHandles checks that at least one well-formed handle is given
func validateHandles(cmd *cobra.Command, args []string) error {
	if err := cobra.MinimumNArgs(1)(cmd, args); err != nil {
		return err
	}

	_, err := parseHandles(args)
	return err
}

// validateHandle checks that exactly one well-formed handle is given
func validateHandle(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}

	_, err := parseHandle(args[0])
	return err
}
