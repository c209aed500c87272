package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// ErrNotRunning indicates no live daemon sits behind the pid file.
var ErrNotRunning = errors.New("daemon not running")

// Status describes what the pid file reveals about the daemon.
type Status struct {
	Running bool
	PID     int
	PIDPath string
}

// ReadPID parses the daemon's pid file.
func ReadPID(pidPath string) (int, error) {
	data, err := os.ReadFile(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("read pid file %q: %w", pidPath, err)
	}
	raw := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(raw)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %q holds no pid: %q", pidPath, raw)
	}
	return pid, nil
}

// Alive reports whether pid names a live process we could signal. A live
// process owned by someone else answers EPERM, which still means alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Probe resolves daemon liveness from the pid file. A missing or garbled pid
// file reads as not running.
func Probe(pidPath string) Status {
	status := Status{PIDPath: pidPath}
	pid, err := ReadPID(pidPath)
	if err != nil {
		return status
	}
	status.PID = pid
	status.Running = Alive(pid)
	return status
}

// Stop sends the termination signal and waits up to grace for the daemon to
// exit. The daemon removes its pid file during exit cleanup, so either the
// file disappearing or the process dying counts as stopped.
func Stop(pidPath string, grace time.Duration) (int, error) {
	pid, err := ReadPID(pidPath)
	if err != nil {
		return 0, err
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to stop current process (pid %d)", pid)
	}
	if !Alive(pid) {
		return 0, ErrNotRunning
	}

	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("signal daemon process %d: %w", pid, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(pidPath); errors.Is(err, os.ErrNotExist) {
			return pid, nil
		}
		if !Alive(pid) {
			return pid, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return pid, fmt.Errorf("daemon process %d did not stop within %s", pid, grace)
}
