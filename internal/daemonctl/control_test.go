package daemonctl_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"daedalus/internal/daemonctl"
)

func writePIDFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "daemon.pid")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
	return path
}

// exitedPID returns the pid of a process that has already exited and been
// reaped, so liveness checks against it fail.
func exitedPID(t *testing.T) int {
	t.Helper()
	cmd := exec.Command("true")
	if err := cmd.Run(); err != nil {
		t.Fatalf("run child: %v", err)
	}
	return cmd.Process.Pid
}

func TestReadPID(t *testing.T) {
	path := writePIDFile(t, " 1234\n")
	pid, err := daemonctl.ReadPID(path)
	if err != nil {
		t.Fatalf("ReadPID: %v", err)
	}
	if pid != 1234 {
		t.Fatalf("pid = %d, want 1234", pid)
	}
}

func TestReadPIDMissingFile(t *testing.T) {
	_, err := daemonctl.ReadPID(filepath.Join(t.TempDir(), "absent.pid"))
	if !errors.Is(err, daemonctl.ErrNotRunning) {
		t.Fatalf("error = %v, want ErrNotRunning", err)
	}
}

func TestReadPIDGarbledFile(t *testing.T) {
	for _, contents := range []string{"", "not-a-pid", "-4"} {
		path := writePIDFile(t, contents)
		_, err := daemonctl.ReadPID(path)
		if err == nil {
			t.Fatalf("ReadPID accepted %q", contents)
		}
		if errors.Is(err, daemonctl.ErrNotRunning) {
			t.Fatalf("garbled file %q reported as not running", contents)
		}
	}
}

func TestAlive(t *testing.T) {
	if !daemonctl.Alive(os.Getpid()) {
		t.Fatal("current process reported dead")
	}
	if daemonctl.Alive(0) || daemonctl.Alive(-1) {
		t.Fatal("non-positive pid reported alive")
	}
	if daemonctl.Alive(exitedPID(t)) {
		t.Fatal("exited process reported alive")
	}
}

func TestProbe(t *testing.T) {
	path := writePIDFile(t, strconv.Itoa(os.Getpid()))
	status := daemonctl.Probe(path)
	if !status.Running {
		t.Fatal("expected running status for current process")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("pid = %d, want %d", status.PID, os.Getpid())
	}
	if status.PIDPath != path {
		t.Fatalf("pid path = %q, want %q", status.PIDPath, path)
	}

	absent := daemonctl.Probe(filepath.Join(t.TempDir(), "absent.pid"))
	if absent.Running || absent.PID != 0 {
		t.Fatalf("unexpected status for absent file: %+v", absent)
	}
}

func TestStopRefusesOwnProcess(t *testing.T) {
	path := writePIDFile(t, strconv.Itoa(os.Getpid()))
	if _, err := daemonctl.Stop(path, time.Second); err == nil {
		t.Fatal("Stop agreed to terminate the calling process")
	}
}

func TestStopDeadProcess(t *testing.T) {
	path := writePIDFile(t, strconv.Itoa(exitedPID(t)))
	_, err := daemonctl.Stop(path, time.Second)
	if !errors.Is(err, daemonctl.ErrNotRunning) {
		t.Fatalf("error = %v, want ErrNotRunning", err)
	}
}

func TestStopTerminatesProcess(t *testing.T) {
	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start child: %v", err)
	}
	waited := make(chan struct{})
	go func() {
		cmd.Wait()
		close(waited)
	}()
	t.Cleanup(func() {
		cmd.Process.Kill()
		<-waited
	})

	path := writePIDFile(t, strconv.Itoa(cmd.Process.Pid))
	pid, err := daemonctl.Stop(path, 10*time.Second)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if pid != cmd.Process.Pid {
		t.Fatalf("pid = %d, want %d", pid, cmd.Process.Pid)
	}

	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("child still running after Stop returned")
	}
}
