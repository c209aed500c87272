package config

import (
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDaemon(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDaemon() error {
	if c.Daemon.Umask < 0 || c.Daemon.Umask > 0o777 {
		return fmt.Errorf("daemon.umask: %#o is outside the permission bit range", c.Daemon.Umask)
	}
	if c.Daemon.UID < 0 {
		return fmt.Errorf("daemon.uid: %d is negative", c.Daemon.UID)
	}
	if c.Daemon.GID < 0 {
		return fmt.Errorf("daemon.gid: %d is negative", c.Daemon.GID)
	}
	if !filepath.IsAbs(c.Daemon.WorkDir) {
		return fmt.Errorf("daemon.work_dir: %q must be absolute", c.Daemon.WorkDir)
	}
	if c.Daemon.RootDir != "" && !filepath.IsAbs(c.Daemon.RootDir) {
		return fmt.Errorf("daemon.root_dir: %q must be absolute", c.Daemon.RootDir)
	}
	for _, fd := range c.Daemon.KeepOpen {
		if fd < 0 {
			return fmt.Errorf("daemon.keep_open: descriptor %d is negative", fd)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use auto, console, or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (use debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}
