package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Daemon contains the process daemonization settings.
type Daemon struct {
	PIDFile             string `toml:"pid_file"`
	WorkDir             string `toml:"work_dir"`
	RootDir             string `toml:"root_dir"`
	Umask               int    `toml:"umask"`
	UID                 int    `toml:"uid"`
	GID                 int    `toml:"gid"`
	SupplementaryGroups bool   `toml:"supplementary_groups"`
	SuppressCoreDumps   bool   `toml:"suppress_core_dumps"`
	Detach              bool   `toml:"detach"`
	Stdin               string `toml:"stdin"`
	Stdout              string `toml:"stdout"`
	Stderr              string `toml:"stderr"`
	KeepOpen            []int  `toml:"keep_open"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Service contains configuration for the daemon's run loop.
type Service struct {
	HeartbeatInterval int `toml:"heartbeat_interval"`
	RunHistoryLimit   int `toml:"run_history_limit"`
}

// Config encapsulates all configuration values for daedalus.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Daemon  Daemon  `toml:"daemon"`
	Logging Logging `toml:"logging"`
	Service Service `toml:"service"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/daedalus/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. It reports the resolved
// path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.LogDir, c.Paths.StateDir}
	if strings.TrimSpace(c.Daemon.PIDFile) != "" {
		dirs = append(dirs, filepath.Dir(c.Daemon.PIDFile))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DaemonLogPath returns the file the daemon's standard streams are bound to
// once it detaches.
func (c *Config) DaemonLogPath() string {
	return filepath.Join(c.Paths.LogDir, "daedalusd.log")
}

// RunDBPath returns the run-history database location.
func (c *Config) RunDBPath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// SampleConfig returns the annotated sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
