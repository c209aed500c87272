// Package daemon turns the current process into a well-behaved Unix
// background daemon.
//
// Start runs the classic sequence in a fixed order: terminal detachment,
// chroot and working directory, umask, privilege drop, core dump
// suppression, descriptor hygiene, the single-instance pid-file lock, stream
// redirection, and finally termination-signal wiring. Every failure along the
// way is fatal to the attempt; the process either becomes a daemon completely
// or should exit nonzero. Because Go cannot fork, detachment re-executes the
// binary in stages rather than double-forking; see detach.go.
//
// The controller owns the daemon's lifecycle after Start: the pid-file lock,
// the SIGTERM handler, and exit-time cleanup. Collaborators only observe
// IsDaemon and the Done channel.
package daemon
