package daemon

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
)

// Lock is an exclusively locked pid file. It guarantees at most one daemon
// instance per path for as long as the holding process lives. The lock is
// advisory and evaporates with the process, so a stale file left by a dead
// holder is detected simply by the next lock attempt succeeding.
type Lock struct {
	fl   *flock.Flock
	path string
}

// acquireLock takes the exclusive, non-blocking advisory lock on path. An
// empty path means locking was not requested and yields a nil lock with no
// filesystem side effects. When another process already holds the lock the
// file's prior contents are rewritten best-effort so a live competitor's pid
// file is never corrupted.
func acquireLock(path string) (*Lock, error) {
	if path == "" {
		return nil, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &LockError{Path: path, Err: err}
	}

	previous, readErr := os.ReadFile(abs)
	existed := readErr == nil

	fl := flock.New(abs)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, &LockError{Path: abs, Err: err}
	}
	if !ok {
		if existed {
			_ = os.WriteFile(abs, previous, 0o644)
		}
		return nil, &LockError{Path: abs, Err: ErrLockHeld}
	}

	return &Lock{fl: fl, path: abs}, nil
}

// WritePID persists pid as the file's entire contents.
func (l *Lock) WritePID(pid int) error {
	if l == nil {
		return nil
	}
	if err := os.WriteFile(l.path, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return &LockError{Path: l.path, Err: err}
	}
	return nil
}

// Path returns the locked pid-file path, or empty for the nil lock.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release removes the pid file and drops the lock.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return l.fl.Unlock()
}
