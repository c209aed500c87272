package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"daedalus/internal/daemonctl"
	"daedalus/internal/runlog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and recent run history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ctx.configValue()
			stdout := cmd.OutOrStdout()

			status := daemonctl.Probe(cfg.Daemon.PIDFile)
			if status.Running {
				fmt.Fprintf(stdout, "Daemon running (pid %d)\n", status.PID)
			} else {
				fmt.Fprintln(stdout, "Daemon is not running")
			}
			fmt.Fprintf(stdout, "PID file: %s\n", status.PIDPath)
			fmt.Fprintln(stdout)

			store, err := runlog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			limit := historyLimit
			if limit <= 0 {
				limit = cfg.Service.RunHistoryLimit
			}
			runs, err := store.LatestRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("load run history: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(stdout, "No recorded runs")
				return nil
			}

			fmt.Fprintln(stdout, renderRunTable(runs))
			return nil
		},
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 0, "Number of runs to show (defaults to the configured history limit)")
	return cmd
}

// renderRunTable lays out run history rows, newest first: the abbreviated run
// id, the daemon pid, when the run started, how long it lasted (or has lasted
// so far), and how it ended.
func renderRunTable(runs []runlog.Run) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "PID", "Started", "Duration", "Outcome"})

	for _, run := range runs {
		tw.AppendRow(table.Row{
			shortRunID(run.ID),
			run.PID,
			run.StartedAt.Local().Format(time.DateTime),
			runDuration(run),
			runOutcome(run),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(run runlog.Run) string {
	end := run.EndedAt
	if !run.Ended() {
		end = run.UpdatedAt
	}
	if end.Before(run.StartedAt) {
		return "-"
	}
	return end.Sub(run.StartedAt).Round(time.Second).String()
}

func runOutcome(run runlog.Run) string {
	if !run.Ended() {
		return "Running"
	}
	reason := run.EndReason
	if reason == "" {
		reason = "ended"
	}
	return cases.Title(language.English).String(reason)
}
