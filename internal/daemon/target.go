package daemon

import (
	"os"
	"strconv"
)

// targetKind enumerates the closed set of stream target variants. Resolving
// heterogeneous inputs once at construction keeps type checks out of the
// daemonization sequence itself.
type targetKind int

const (
	targetNull targetKind = iota
	targetPath
	targetFile
	targetFD
)

// Target identifies where a standard stream should be bound, or which
// descriptor must survive descriptor closing. The zero value is the null
// device.
type Target struct {
	kind targetKind
	path string
	file *os.File
	fd   int
}

// NullTarget returns a target bound to the null device.
func NullTarget() Target { return Target{} }

// PathTarget returns a target that opens the named file at redirect time. The
// null device path collapses to the null target.
func PathTarget(path string) Target {
	if path == "" || path == os.DevNull {
		return Target{}
	}
	return Target{kind: targetPath, path: path}
}

// FileTarget wraps an already-open file.
func FileTarget(f *os.File) Target {
	if f == nil {
		return Target{}
	}
	return Target{kind: targetFile, file: f}
}

// FDTarget wraps a raw descriptor number.
func FDTarget(fd int) Target {
	if fd < 0 {
		return Target{}
	}
	return Target{kind: targetFD, fd: fd}
}

// TargetFor resolves an arbitrary stream-like value into a Target. Strings
// are treated as paths, open files and raw descriptor numbers pass through,
// and anything else collapses to the null device. It never fails.
func TargetFor(v any) Target {
	switch val := v.(type) {
	case nil:
		return Target{}
	case string:
		return PathTarget(val)
	case *os.File:
		return FileTarget(val)
	case int:
		return FDTarget(val)
	case interface{ Fd() uintptr }:
		return FDTarget(int(val.Fd()))
	default:
		return Target{}
	}
}

// Descriptor reports the descriptor number behind the target, if it has one.
// Paths and the null device have none until they are opened.
func (t Target) Descriptor() (int, bool) {
	switch t.kind {
	case targetFile:
		return int(t.file.Fd()), true
	case targetFD:
		return t.fd, true
	default:
		return 0, false
	}
}

// IsNull reports whether the target is the null device.
func (t Target) IsNull() bool { return t.kind == targetNull }

func (t Target) String() string {
	switch t.kind {
	case targetPath:
		return t.path
	case targetFile:
		return t.file.Name()
	case targetFD:
		return "fd:" + strconv.Itoa(t.fd)
	default:
		return os.DevNull
	}
}
