package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenTargetNull(t *testing.T) {
	f, err := openTarget(NullTarget(), modeAppend)
	if err != nil {
		t.Fatalf("openTarget: %v", err)
	}
	if f != nil {
		t.Fatal("null target opened a file")
	}
}

func TestOpenTargetPathAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	if err := os.WriteFile(path, []byte("first\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	f, err := openTarget(PathTarget(path), modeAppend)
	if err != nil {
		t.Fatalf("openTarget: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString("second\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(contents) != "first\nsecond\n" {
		t.Fatalf("contents = %q, want existing data preserved", contents)
	}
}

func TestOpenTargetMissingPath(t *testing.T) {
	_, err := openTarget(PathTarget(filepath.Join(t.TempDir(), "absent")), modeRead)
	if err == nil {
		t.Fatal("expected error opening missing file for reading")
	}
	if _, ok := err.(*StreamError); !ok {
		t.Fatalf("error type = %T, want *StreamError", err)
	}
}

func TestOpenTargetFilePassthrough(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stream")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer f.Close()

	got, err := openTarget(FileTarget(f), modeAppend)
	if err != nil {
		t.Fatalf("openTarget: %v", err)
	}
	if got != f {
		t.Fatal("file target did not pass through the original handle")
	}
}

func TestDupOntoSameDescriptor(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "dup")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer f.Close()

	if err := dupOnto(int(f.Fd()), int(f.Fd())); err != nil {
		t.Fatalf("dupOnto onto itself: %v", err)
	}
}

func TestDupOntoRebindsDescriptor(t *testing.T) {
	dir := t.TempDir()
	src, err := os.Create(filepath.Join(dir, "src"))
	if err != nil {
		t.Fatalf("create src: %v", err)
	}
	defer src.Close()
	dst, err := os.Create(filepath.Join(dir, "dst"))
	if err != nil {
		t.Fatalf("create dst: %v", err)
	}
	defer dst.Close()

	if err := dupOnto(int(src.Fd()), int(dst.Fd())); err != nil {
		t.Fatalf("dupOnto: %v", err)
	}
	if _, err := dst.WriteString("rebound"); err != nil {
		t.Fatalf("write through rebound descriptor: %v", err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "src"))
	if err != nil {
		t.Fatalf("read src: %v", err)
	}
	if string(contents) != "rebound" {
		t.Fatalf("src contents = %q, want %q", contents, "rebound")
	}
	empty, err := os.ReadFile(filepath.Join(dir, "dst"))
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("dst received %q, want nothing", empty)
	}
}
