package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"daedalus/internal/config"
	"daedalus/internal/daemon"
	"daedalus/internal/logging"
	"daedalus/internal/runlog"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel   string
	Foreground bool
}

// Run daemonizes the process per cfg and drives the service loop until the
// termination signal (or an interrupt in foreground mode) arrives. When
// detaching, Run only ever returns in the final detached process; the
// transient parents exit inside Start.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	d := daemon.New(buildDaemonConfig(cfg, opts), logger)
	if err := d.Start(); err != nil {
		logger.Error("daemonize", logging.Error(err))
		return err
	}
	defer d.Close()

	// Anything opened from here on postdates the descriptor sweep.
	store, err := runlog.Open(cfg)
	if err != nil {
		logger.Error("open run history store", logging.Error(err))
		return err
	}
	defer store.Close()

	runID := uuid.NewString()
	if err := store.BeginRun(ctx, runID, os.Getpid()); err != nil {
		logger.Error("record run start", logging.Error(err))
		return err
	}
	if _, err := store.Prune(ctx, cfg.Service.RunHistoryLimit); err != nil {
		logger.Warn("prune run history", logging.Error(err))
	}

	logger.Info("daedalus daemon started",
		logging.String("run_id", runID),
		logging.Int("pid", os.Getpid()),
		logging.String("pid_file", d.LockPath()),
	)

	ticker := time.NewTicker(time.Duration(cfg.Service.HeartbeatInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := store.Heartbeat(ctx, runID); err != nil {
				logger.Warn("record heartbeat", logging.Error(err))
			}
		case term := <-d.Done():
			logger.Info("daedalus daemon shutting down", logging.String("reason", term.Error()))
			endRun(store, runID, "signal: "+term.Signal.String(), logger)
			return nil
		case <-ctx.Done():
			logger.Info("daedalus daemon interrupted")
			endRun(store, runID, "interrupt", logger)
			return nil
		}
	}
}

func endRun(store *runlog.Store, runID, reason string, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.EndRun(ctx, runID, reason); err != nil {
		logger.Warn("record run end", logging.Error(err))
	}
}

// buildDaemonConfig maps file configuration onto the daemonization config.
// Foreground keeps the terminal attached and the standard streams in place.
func buildDaemonConfig(cfg *config.Config, opts Options) daemon.Config {
	dc := daemon.DefaultConfig()
	dc.PIDPath = cfg.Daemon.PIDFile
	dc.WorkingDir = cfg.Daemon.WorkDir
	dc.RootDir = cfg.Daemon.RootDir
	dc.Umask = cfg.Daemon.Umask
	dc.UID = cfg.Daemon.UID
	dc.GID = cfg.Daemon.GID
	dc.SupplementaryGroups = cfg.Daemon.SupplementaryGroups
	dc.SuppressCoreDumps = cfg.Daemon.SuppressCoreDumps
	dc.Detach = cfg.Daemon.Detach && !opts.Foreground

	for _, fd := range cfg.Daemon.KeepOpen {
		dc.KeepOpen = append(dc.KeepOpen, daemon.FDTarget(fd))
	}

	if opts.Foreground {
		dc.Stdin = daemon.FileTarget(os.Stdin)
		dc.Stdout = daemon.FileTarget(os.Stdout)
		dc.Stderr = daemon.FileTarget(os.Stderr)
		return dc
	}

	stdout := cfg.Daemon.Stdout
	if stdout == "" {
		stdout = cfg.DaemonLogPath()
	}
	stderr := cfg.Daemon.Stderr
	if stderr == "" {
		stderr = cfg.DaemonLogPath()
	}
	dc.Stdin = daemon.PathTarget(cfg.Daemon.Stdin)
	dc.Stdout = daemon.PathTarget(stdout)
	dc.Stderr = daemon.PathTarget(stderr)
	return dc
}
