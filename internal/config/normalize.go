package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}

	if strings.TrimSpace(c.Daemon.PIDFile) == "" {
		c.Daemon.PIDFile = filepath.Join(c.Paths.StateDir, "daedalusd.pid")
	}
	if c.Daemon.PIDFile, err = expandPath(c.Daemon.PIDFile); err != nil {
		return fmt.Errorf("daemon.pid_file: %w", err)
	}
	if strings.TrimSpace(c.Daemon.WorkDir) == "" {
		c.Daemon.WorkDir = defaultWorkDir
	}
	if c.Daemon.WorkDir, err = expandPath(c.Daemon.WorkDir); err != nil {
		return fmt.Errorf("daemon.work_dir: %w", err)
	}
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"daemon.stdin", &c.Daemon.Stdin},
		{"daemon.stdout", &c.Daemon.Stdout},
		{"daemon.stderr", &c.Daemon.Stderr},
	} {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" || trimmed == "/dev/null" {
			*field.value = trimmed
			continue
		}
		if *field.value, err = expandPath(trimmed); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	if c.Service.HeartbeatInterval <= 0 {
		c.Service.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Service.RunHistoryLimit <= 0 {
		c.Service.RunHistoryLimit = defaultRunHistoryLimit
	}
	return nil
}
