package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/winmon/internal/monitor"
)

var privilegeCmd = &cobra.Command{
	Use:   "privilege",
	Short: "Report whether this process may observe other processes' windows",
	Args:  cobra.NoArgs,
	RunE:  runPrivilege,
}

func runPrivilege(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	defer s.Close()

	granted := s.manager.CheckPrivilege()
	fmt.Fprintln(cmd.OutOrStdout(), granted)

	if !granted {
		return monitor.NoRights
	}

	return nil
}
