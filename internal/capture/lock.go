package capture

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/command-line-assistant/clad/internal/xdg"
)

// namedLock is an advisory, non-blocking exclusive file lock, recording
// the owning pid in its contents so a second StartCapture can report
// which process is holding it — the Go analogue of
// original_source/utils/files.py's NamedFileLock as used by
// commands/shell.py's `--enable-capture` path.
type namedLock struct {
	file *os.File
}

func lockPath() string {
	return xdg.StatePath("terminal.lock")
}

// acquireLock tries to take the exclusive lock, returning
// ErrShellCaptureBusy (naming the holding pid) if another process
// already holds it.
func acquireLock() (*namedLock, error) {
	path := lockPath()
	if err := os.MkdirAll(parentDir(path), 0700); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		holder := readPID(path)
		f.Close()
		if holder != "" {
			return nil, fmt.Errorf("%w (pid %s)", ErrShellCaptureBusy, holder)
		}
		return nil, ErrShellCaptureBusy
	}

	f.Truncate(0)
	f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)

	return &namedLock{file: f}, nil
}

// IsCaptureActive reports whether a terminal capture session currently
// holds the lock, without disturbing it. Used by the interactive chat
// REPL to refuse starting while capture is running (spec.md §4.H).
func IsCaptureActive() bool {
	path := lockPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return false
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return true
	}
	unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return false
}

func (l *namedLock) release() {
	unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	l.file.Close()
}

func readPID(path string) string {
	contents, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(contents))
}
