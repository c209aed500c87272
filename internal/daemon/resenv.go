package daemon

import (
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"

	"daedalus/internal/logging"
)

// setCreationMask sets the process umask and returns the previous mask. The
// underlying call cannot fail.
func setCreationMask(mask int) int {
	return unix.Umask(mask)
}

// changeRoot changes the filesystem root. Only meaningful for a privileged
// process; arranging that privilege is the caller's problem.
func changeRoot(path string) error {
	if err := unix.Chroot(path); err != nil {
		return &EnvError{Op: "change root directory", Path: path, Err: err}
	}
	return nil
}

// changeWorkingDirectory moves the process into dir.
func changeWorkingDirectory(dir string) error {
	if err := os.Chdir(dir); err != nil {
		return &EnvError{Op: "change working directory", Path: dir, Err: err}
	}
	return nil
}

// dropPrivileges switches the process to uid/gid. Group identity is set
// before user identity: once the user privilege is gone the process can no
// longer change its groups. A failed username lookup is not fatal; it only
// disables supplementary-group handling.
func dropPrivileges(logger *slog.Logger, uid, gid int, supplementary bool) error {
	var u *user.User
	var err error
	if u, err = user.LookupId(strconv.Itoa(uid)); err != nil {
		logger.Warn("cannot resolve username for uid, skipping supplementary groups",
			logging.Int("uid", uid), logging.Error(err))
		supplementary = false
	}

	if supplementary {
		groups, err := supplementaryGroups(u, gid)
		if err != nil {
			return &EnvError{Op: "resolve supplementary groups", Path: u.Username, Err: err}
		}
		if err := unix.Setgroups(groups); err != nil {
			return &EnvError{Op: "set supplementary groups", Err: err}
		}
	}

	if err := unix.Setgid(gid); err != nil {
		return &EnvError{Op: "set gid " + strconv.Itoa(gid), Err: err}
	}
	if err := unix.Setuid(uid); err != nil {
		return &EnvError{Op: "set uid " + strconv.Itoa(uid), Err: err}
	}
	return nil
}

func supplementaryGroups(u *user.User, gid int) ([]int, error) {
	ids, err := u.GroupIds()
	if err != nil {
		return nil, err
	}
	groups := make([]int, 0, len(ids)+1)
	groups = append(groups, gid)
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil || n == gid {
			continue
		}
		groups = append(groups, n)
	}
	return groups, nil
}

// suppressCoreDumps zeroes the core file size limit so a crashing daemon
// cannot leak sensitive state into a core file. A platform that cannot even
// report the limit is a fatal condition, not something to paper over.
func suppressCoreDumps() error {
	var limit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_CORE, &limit); err != nil {
		return fmt.Errorf("%w: %v", ErrLimitUnsupported, err)
	}
	limit.Cur = 0
	limit.Max = 0
	if err := unix.Setrlimit(unix.RLIMIT_CORE, &limit); err != nil {
		return &EnvError{Op: "set core dump limit", Err: err}
	}
	return nil
}

// supervisedByInit reports whether the parent process is the system init
// process, in which case there is no terminal to detach from.
func supervisedByInit() bool {
	return os.Getppid() == 1
}
