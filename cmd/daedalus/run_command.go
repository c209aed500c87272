package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"daedalus/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var foreground bool
	var logLevel string

	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Run the daedalus daemon",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			if foreground {
				var cancel context.CancelFunc
				runCtx, cancel = signal.NotifyContext(runCtx, os.Interrupt)
				defer cancel()
			}
			return daemonrun.Run(runCtx, cfg, daemonrun.Options{
				LogLevel:   logLevel,
				Foreground: foreground,
			})
		},
	}

	cmd.Flags().BoolVar(&foreground, "foreground", false, "Stay attached to the terminal instead of detaching")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	return cmd
}
