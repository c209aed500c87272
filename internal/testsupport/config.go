// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"daedalus/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Detachment is disabled so tests stay in-process, and the standard streams
// point at the null device.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Daemon.PIDFile = filepath.Join(base, "state", "daedalusd.pid")
	cfg.Daemon.WorkDir = base
	cfg.Daemon.Detach = false
	cfg.Daemon.SuppressCoreDumps = false

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithPIDFile overrides the pid-file path on the test config.
func WithPIDFile(path string) ConfigOption {
	return func(c *config.Config) {
		c.Daemon.PIDFile = path
	}
}

// WithDetach enables detachment on the test config.
func WithDetach() ConfigOption {
	return func(c *config.Config) {
		c.Daemon.Detach = true
	}
}
