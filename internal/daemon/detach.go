package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// The detach sequence cannot literally double-fork: the Go runtime does not
// survive a bare fork. Instead the process re-executes itself twice, carrying
// the stage in an environment variable. The first child starts in a new
// session, severing the controlling terminal; the second can never reacquire
// one because it is not a session leader. Transient parents leave through
// os.Exit so no shutdown hooks ever run in them.
const stageEnv = "DAEDALUS_DETACH_STAGE"

type detachStage int

const (
	stageInitial detachStage = iota
	stageSessionLeader
	stageDetached
)

// currentStage reads the detach stage from the environment. Anything absent
// or unparseable counts as the initial stage.
func currentStage() detachStage {
	raw := os.Getenv(stageEnv)
	if raw == "" {
		return stageInitial
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < int(stageInitial) || n > int(stageDetached) {
		return stageInitial
	}
	return detachStage(n)
}

func clearStage() {
	_ = os.Unsetenv(stageEnv)
}

// advanceStage starts the next copy of this process and exits the current
// one. It only returns on spawn failure.
func advanceStage(stage detachStage, keepOpen map[int]struct{}) error {
	exe, err := os.Executable()
	if err != nil {
		return &EnvError{Op: "resolve executable", Err: err}
	}

	attr := &os.ProcAttr{
		Env:   stageEnviron(stage + 1),
		Files: inheritedFiles(keepOpen),
	}
	if stage == stageInitial {
		attr.Sys = &syscall.SysProcAttr{Setsid: true}
	}

	proc, err := os.StartProcess(exe, os.Args, attr)
	if err != nil {
		return &EnvError{Op: fmt.Sprintf("spawn detach stage %d", stage+1), Path: exe, Err: err}
	}
	_ = proc.Release()
	os.Exit(0)
	return nil
}

// stageEnviron is the current environment with the stage variable replaced.
func stageEnviron(next detachStage) []string {
	env := os.Environ()
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, stageEnv+"=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, stageEnv+"="+strconv.Itoa(int(next)))
}

// inheritedFiles lays out the descriptor table for the next stage: the three
// standard streams in place, plus every keep-open descriptor at its own
// number. Exec would otherwise close them, since Go marks every descriptor it
// opens close-on-exec.
func inheritedFiles(keepOpen map[int]struct{}) []*os.File {
	maxFD := 2
	for fd := range keepOpen {
		if fd > maxFD {
			maxFD = fd
		}
	}

	files := make([]*os.File, maxFD+1)
	files[0], files[1], files[2] = os.Stdin, os.Stdout, os.Stderr
	for fd := range keepOpen {
		if fd > 2 {
			files[fd] = os.NewFile(uintptr(fd), "keep-open-"+strconv.Itoa(fd))
		}
	}
	return files
}
