package logging_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"daedalus/internal/logging"
)

func TestNewConsoleLoggerWritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("daemon starting", logging.String("path", "/run/d.pid"), logging.Int("pid", 42))
	logger.Debug("suppressed at info level")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(content)
	if !strings.Contains(out, "INF daemon starting") {
		t.Fatalf("missing message line, got %q", out)
	}
	if !strings.Contains(out, "pid=42") {
		t.Fatalf("missing attribute, got %q", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Fatalf("debug line emitted at info level: %q", out)
	}
}

func TestNewJSONLoggerFieldNames(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Warn("pid lock contended", logging.String("path", "/run/d.pid"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var record map[string]any
	if err := json.Unmarshal(content, &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, content)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("missing ts field: %v", record)
	}
	if record["level"] != "warn" {
		t.Fatalf("level = %v, want lowercase warn", record["level"])
	}
	if record["path"] != "/run/d.pid" {
		t.Fatalf("missing attribute: %v", record)
	}
}

func TestNewCreatesLogDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "daemon.log")

	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("first line")

	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "chatty",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("below default level")
	logger.Info("at default level")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "below default level") {
		t.Fatalf("debug line emitted: %q", content)
	}
	if !strings.Contains(string(content), "at default level") {
		t.Fatalf("info line missing: %q", content)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "quoted.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("msg", logging.String("dir", "/tmp/with space"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `dir="/tmp/with space"`) {
		t.Fatalf("spaced value not quoted: %q", content)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger == nil {
		t.Fatal("expected logger instance")
	}
	logger.Error("goes nowhere", logging.Error(os.ErrClosed))
}
