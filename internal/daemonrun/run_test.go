package daemonrun_test

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"daedalus/internal/daemonrun"
	"daedalus/internal/runlog"
	"daedalus/internal/testsupport"
)

// Foreground mode keeps the run loop in-process, which makes the full
// lifecycle observable from a test: pid file while running, run history and
// cleanup after.
func TestRunForegroundLifecycle(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	defer os.Chdir(wd)

	cfg := testsupport.NewConfig(t)
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "json"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- daemonrun.Run(ctx, cfg, daemonrun.Options{Foreground: true})
	}()

	deadline := time.Now().Add(10 * time.Second)
	for {
		contents, err := os.ReadFile(cfg.Daemon.PIDFile)
		if err == nil {
			pid, convErr := strconv.Atoi(string(contents))
			if convErr != nil {
				t.Fatalf("pid file contents %q: %v", contents, convErr)
			}
			if pid != os.Getpid() {
				t.Fatalf("pid file holds %d, want %d", pid, os.Getpid())
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("pid file never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	if _, err := os.Stat(cfg.Daemon.PIDFile); !os.IsNotExist(err) {
		t.Fatalf("pid file still present after shutdown: %v", err)
	}

	store, err := runlog.Open(cfg)
	if err != nil {
		t.Fatalf("open run history: %v", err)
	}
	defer store.Close()

	runs, err := store.LatestRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("LatestRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].PID != os.Getpid() {
		t.Fatalf("run pid = %d, want %d", runs[0].PID, os.Getpid())
	}
	if !runs[0].Ended() || runs[0].EndReason != "interrupt" {
		t.Fatalf("run not closed out as interrupted: %+v", runs[0])
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := daemonrun.Run(context.Background(), nil, daemonrun.Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}
