package daemon

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// buildExclusionSet unions the descriptors behind the keep-open list and the
// three standard stream targets. Entries without a resolvable descriptor are
// dropped silently.
func buildExclusionSet(keepOpen []Target, stdin, stdout, stderr Target) map[int]struct{} {
	targets := make([]Target, 0, len(keepOpen)+3)
	targets = append(targets, keepOpen...)
	targets = append(targets, stdin, stdout, stderr)

	exclude := make(map[int]struct{}, len(targets))
	for _, t := range targets {
		if fd, ok := t.Descriptor(); ok {
			exclude[fd] = struct{}{}
		}
	}
	return exclude
}

// closeAllExcept closes every descriptor the process holds on a regular file,
// except those in exclude. Close failures are swallowed; a descriptor that is
// already gone is not an error.
func closeAllExcept(exclude map[int]struct{}) {
	fds, ok := openRegularDescriptors()
	if !ok {
		fds = descriptorRange()
	}
	for _, fd := range fds {
		if _, keep := exclude[fd]; keep {
			continue
		}
		_ = unix.Close(fd)
	}
}

// openRegularDescriptors enumerates the process's open descriptors through
// /proc and keeps those backed by regular files. Sockets, pipes, terminals,
// and the runtime's polling descriptors are left alone.
func openRegularDescriptors() ([]int, bool) {
	dir, err := os.Open("/proc/self/fd")
	if err != nil {
		return nil, false
	}
	defer dir.Close()

	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, false
	}

	self := int(dir.Fd())
	fds := make([]int, 0, len(names))
	for _, name := range names {
		fd, err := strconv.Atoi(name)
		if err != nil || fd == self {
			continue
		}
		var stat unix.Stat_t
		if err := unix.Fstat(fd, &stat); err != nil {
			continue
		}
		if stat.Mode&unix.S_IFMT != unix.S_IFREG {
			continue
		}
		fds = append(fds, fd)
	}
	return fds, true
}

// descriptorRange is the fallback enumeration for systems without /proc:
// every number from 3 up to the soft descriptor limit. It can both miss
// descriptors beyond a misreported limit and close numbers that were never
// open, which is why the live query above is preferred.
func descriptorRange() []int {
	limit := 4096
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err == nil &&
		rl.Cur != unix.RLIM_INFINITY && rl.Cur < uint64(limit) {
		limit = int(rl.Cur)
	}

	fds := make([]int, 0, limit)
	for fd := 3; fd < limit; fd++ {
		fds = append(fds, fd)
	}
	return fds
}
