package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daedalus/internal/daemonctl"
)

func newStopCommand(ctx *commandContext) *cobra.Command {
	var grace time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daedalus daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()

			pid, err := daemonctl.Stop(cfg.Daemon.PIDFile, grace)
			if errors.Is(err, daemonctl.ErrNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Daemon stopped (pid %d)\n", pid)
			return nil
		},
	}

	cmd.Flags().DurationVar(&grace, "grace", 10*time.Second, "How long to wait for the daemon to exit")
	return cmd
}
