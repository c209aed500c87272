package daemon

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// Open modes for the three standard stream slots: input is read-only, output
// and error append so an existing log file is extended rather than clobbered.
const (
	modeRead   = os.O_RDONLY
	modeAppend = os.O_WRONLY | os.O_CREATE | os.O_APPEND
)

// openTarget materializes a target into an open file. Null targets yield nil;
// the redirect binds those to the null device.
func openTarget(t Target, flag int) (*os.File, error) {
	switch t.kind {
	case targetPath:
		f, err := os.OpenFile(t.path, flag, 0o644)
		if err != nil {
			return nil, &StreamError{Target: t.path, Err: err}
		}
		return f, nil
	case targetFile:
		return t.file, nil
	case targetFD:
		return os.NewFile(uintptr(t.fd), t.String()), nil
	default:
		return nil, nil
	}
}

// redirectStream rebinds std, one of the process's standard streams, onto
// target. A nil target binds the null device. Afterwards reads and writes on
// the standard descriptor reach the target's open file.
func redirectStream(std *os.File, target *os.File) error {
	var fd int
	if target != nil {
		fd = int(target.Fd())
	} else {
		null, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
		if err != nil {
			return &StreamError{Target: os.DevNull, Err: err}
		}
		fd = int(null.Fd())
	}
	return dupOnto(fd, int(std.Fd()))
}

// dupOnto duplicates src onto dst so operations on dst reach src's open file.
func dupOnto(src, dst int) error {
	if src == dst {
		return nil
	}
	if err := unix.Dup3(src, dst, 0); err != nil {
		return &StreamError{Target: "fd:" + strconv.Itoa(dst), Err: err}
	}
	return nil
}
