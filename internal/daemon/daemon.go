package daemon

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"daedalus/internal/logging"
)

// Config describes how the process should daemonize. It must not be mutated
// once Start begins.
type Config struct {
	// PIDPath is the pid-file path used for the single-instance lock.
	// Empty disables locking entirely.
	PIDPath string

	// Stdin, Stdout and Stderr are the targets the standard streams are
	// rebound to. The zero value is the null device. With Detach set, use
	// null or path targets: a file or descriptor target names an open file
	// of the pre-exec process, and only KeepOpen descriptors are carried
	// across the re-exec.
	Stdin  Target
	Stdout Target
	Stderr Target

	// KeepOpen lists descriptors that must survive descriptor closing and
	// the detach re-exec.
	KeepOpen []Target

	// WorkingDir is the directory the daemon runs in. Empty means the
	// filesystem root.
	WorkingDir string

	// RootDir, when set, is chrooted into before anything else. Requires
	// privilege.
	RootDir string

	// Umask is the file creation mask.
	Umask int

	// UID and GID are the owner the process drops to. Zero means the
	// caller's current uid/gid: only root can switch identity, and for
	// root the current uid is zero anyway.
	UID int
	GID int

	// SupplementaryGroups also sets the supplementary group list from the
	// target user's memberships.
	SupplementaryGroups bool

	// SuppressCoreDumps zeroes the core file size limit.
	SuppressCoreDumps bool

	// Detach severs the controlling terminal via the staged re-exec. It is
	// skipped automatically when the process is already supervised by
	// init.
	Detach bool
}

// DefaultConfig carries the historical defaults: run from the filesystem
// root, conservative umask, no lock file, core dumps off, full detach.
func DefaultConfig() Config {
	return Config{
		WorkingDir:        "/",
		Umask:             0o027,
		SuppressCoreDumps: true,
		Detach:            true,
	}
}

// Termination is the controlled shutdown condition produced when the
// termination signal arrives. It is an intentional request, not a crash.
type Termination struct {
	Signal os.Signal
}

func (t Termination) Error() string {
	return "terminating on signal " + t.Signal.String()
}

// Daemon converts the current process into a background daemon and owns its
// lifecycle from that point: the single-instance lock, the termination
// signal, and pid-file cleanup. The lifecycle flag is monotonic; it flips to
// active exactly once per process lifetime.
type Daemon struct {
	cfg    Config
	logger *slog.Logger

	active  atomic.Bool
	lock    *Lock
	done    chan Termination
	release sync.Once
}

// New builds a controller for cfg. A nil logger is replaced with a no-op one.
func New(cfg Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.WorkingDir == "" {
		cfg.WorkingDir = "/"
	}
	if cfg.UID == 0 {
		cfg.UID = os.Getuid()
	}
	if cfg.GID == 0 {
		cfg.GID = os.Getgid()
	}
	return &Daemon{
		cfg:    cfg,
		logger: logger,
		done:   make(chan Termination, 1),
	}
}

// IsDaemon reports whether the start sequence has fully completed.
func (d *Daemon) IsDaemon() bool { return d.active.Load() }

// LockPath returns the acquired pid-file path, or empty when no lock was
// requested.
func (d *Daemon) LockPath() string { return d.lock.Path() }

// Start runs the daemonization sequence. Calling it on an active controller
// is a no-op. Any returned error means the sequence aborted partway; callers
// must treat that as fatal and exit nonzero rather than continue half
// daemonized.
//
// When detaching, Start re-executes the process and only returns in the final
// detached copy; transient parents exit immediately without running any
// cleanup, which belongs to the eventual daemon.
func (d *Daemon) Start() error {
	if d.active.Load() {
		return nil
	}

	if err := d.detach(); err != nil {
		return err
	}

	if d.cfg.RootDir != "" {
		if err := changeRoot(d.cfg.RootDir); err != nil {
			return err
		}
	}
	if err := changeWorkingDirectory(d.cfg.WorkingDir); err != nil {
		return err
	}
	setCreationMask(d.cfg.Umask)
	if err := dropPrivileges(d.logger, d.cfg.UID, d.cfg.GID, d.cfg.SupplementaryGroups); err != nil {
		return err
	}
	if d.cfg.SuppressCoreDumps {
		if err := suppressCoreDumps(); err != nil {
			return err
		}
	}

	exclude := buildExclusionSet(d.cfg.KeepOpen, d.cfg.Stdin, d.cfg.Stdout, d.cfg.Stderr)
	d.logger.Debug("closing open descriptors", logging.Int("kept", len(exclude)))
	closeAllExcept(exclude)

	lock, err := acquireLock(d.cfg.PIDPath)
	if err != nil {
		d.logger.Error("acquire pid lock", logging.String("path", d.cfg.PIDPath), logging.Error(err))
		return err
	}
	d.lock = lock
	if err := lock.WritePID(os.Getpid()); err != nil {
		return err
	}

	if err := d.redirectStreams(); err != nil {
		return err
	}

	d.installTerminationHandler()
	d.active.Store(true)
	d.logger.Debug("daemon active", logging.Int("pid", os.Getpid()))
	return nil
}

// detach runs the staged re-exec when detachment is wanted and not already
// done. It happens before chroot because the re-exec must resolve the
// executable in the original namespace; every other environment change is
// inherited across exec, so the surviving copy observes the same end state a
// fork would.
func (d *Daemon) detach() error {
	stage := currentStage()
	clearStage()

	if !d.cfg.Detach || stage == stageDetached {
		return nil
	}
	if stage == stageInitial && supervisedByInit() {
		// Already adopted by init; there is no terminal to sever.
		return nil
	}

	d.logger.Debug("detaching process", logging.Int("stage", int(stage)))
	return advanceStage(stage, keepOpenDescriptors(d.cfg.KeepOpen))
}

func keepOpenDescriptors(keep []Target) map[int]struct{} {
	fds := make(map[int]struct{}, len(keep))
	for _, t := range keep {
		if fd, ok := t.Descriptor(); ok {
			fds[fd] = struct{}{}
		}
	}
	return fds
}

func (d *Daemon) redirectStreams() error {
	stdin, err := openTarget(d.cfg.Stdin, modeRead)
	if err != nil {
		return err
	}
	stdout, err := openTarget(d.cfg.Stdout, modeAppend)
	if err != nil {
		return err
	}
	stderr, err := openTarget(d.cfg.Stderr, modeAppend)
	if err != nil {
		return err
	}

	if err := redirectStream(os.Stdin, stdin); err != nil {
		return err
	}
	if err := redirectStream(os.Stdout, stdout); err != nil {
		return err
	}
	return redirectStream(os.Stderr, stderr)
}

// installTerminationHandler translates SIGTERM into a Termination value on
// the done channel. The handler does nothing else; ordered cleanup belongs to
// Close. Signal delivery is process-global, so there is exactly one
// registration for the controller's lifetime.
func (d *Daemon) installTerminationHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM)
	go func() {
		sig := <-ch
		d.done <- Termination{Signal: sig}
	}()
}

// Done delivers the shutdown request raised by the termination handler.
func (d *Daemon) Done() <-chan Termination { return d.done }

// Close performs the exit-time cleanup: the pid file is removed and the lock
// released. Safe to call more than once.
func (d *Daemon) Close() error {
	var err error
	d.release.Do(func() {
		err = d.lock.Release()
	})
	return err
}
