package daemon

import (
	"errors"
	"fmt"
)

// EnvError reports a failed privileged OS operation during daemonization.
// These are always fatal to the start sequence.
type EnvError struct {
	Op   string
	Path string
	Err  error
}

func (e *EnvError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EnvError) Unwrap() error { return e.Err }

// ErrLimitUnsupported indicates the platform cannot report the core dump
// resource limit. Distinct from a failure to change the limit.
var ErrLimitUnsupported = errors.New("core dump resource limit unsupported")

// ErrLockHeld indicates another process holds the pid-file lock.
var ErrLockHeld = errors.New("lock held by another process")

// LockError reports a failed single-instance lock acquisition.
type LockError struct {
	Path string
	Err  error
}

func (e *LockError) Error() string { return fmt.Sprintf("lock %s: %v", e.Path, e.Err) }

func (e *LockError) Unwrap() error { return e.Err }

// StreamError reports a stream target that could not be opened or bound.
type StreamError struct {
	Target string
	Err    error
}

func (e *StreamError) Error() string { return fmt.Sprintf("stream %s: %v", e.Target, e.Err) }

func (e *StreamError) Unwrap() error { return e.Err }
