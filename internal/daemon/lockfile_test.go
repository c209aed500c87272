package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireLockEmptyPathIsNoop(t *testing.T) {
	lock, err := acquireLock("")
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	if lock != nil {
		t.Fatalf("expected nil lock for empty path, got %v", lock.Path())
	}
	if lock.Path() != "" {
		t.Fatalf("nil lock Path() = %q, want empty", lock.Path())
	}
	if err := lock.WritePID(123); err != nil {
		t.Fatalf("nil lock WritePID: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("nil lock Release: %v", err)
	}
}

func TestAcquireLockWritesAndCleansPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")

	lock, err := acquireLock(path)
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	if err := lock.WritePID(4321); err != nil {
		t.Fatalf("WritePID: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	if string(contents) != "4321" {
		t.Fatalf("pid file contents = %q, want %q", contents, "4321")
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("pid file still present after release: %v", err)
	}
}

// flock treats each open file description independently, even within one
// process, so a second acquisition conflicts without spawning a subprocess.
func TestAcquireLockConflictPreservesContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")

	holder, err := acquireLock(path)
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	defer holder.Release()
	if err := holder.WritePID(111); err != nil {
		t.Fatalf("WritePID: %v", err)
	}

	_, err = acquireLock(path)
	if err == nil {
		t.Fatal("second acquireLock succeeded, want conflict")
	}
	if !errors.Is(err, ErrLockHeld) {
		t.Fatalf("error = %v, want ErrLockHeld", err)
	}
	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("error type = %T, want *LockError", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	if string(contents) != "111" {
		t.Fatalf("pid file contents = %q after failed acquisition, want %q", contents, "111")
	}
}

func TestReleaseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.pid")
	lock, err := acquireLock(path)
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}
