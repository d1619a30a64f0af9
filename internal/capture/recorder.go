// Package capture implements the pseudo-terminal recorder described in
// spec.md §4.D: spawn the user's shell under a PTY, frame commands and
// their output using a shell-emitted prompt marker, and append
// newline-delimited JSON records to a log file.
//
// It generalizes original_source/terminal/reader.py's TerminalRecorder,
// replacing Python's stdlib `pty.spawn` with `github.com/creack/pty` and
// its `fcntl`/`termios` window-size and raw-mode plumbing with
// creack/pty's InheritSize and `golang.org/x/term`.
package capture

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/command-line-assistant/clad/internal/logging"
	"github.com/command-line-assistant/clad/internal/xdg"
)

// PromptMarker is the escape sequence the shell is expected to emit
// immediately before each prompt, the framing anchor for the two-state
// capture machine (spec.md §4.D).
const PromptMarker = "\x1b]"

// ErrShellCaptureBusy is returned by StartCapture when another capture
// session already holds the terminal lock.
var ErrShellCaptureBusy = errors.New("capture: a terminal capture session is already running")

// LogFilePath is the deterministic path the capture log is written to.
func LogFilePath() string {
	return xdg.StatePath("terminal.log")
}

// record is one finalized command/output pair, matching the JSON shape
// spec.md §6 "Terminal log format" requires.
type record struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}

// Recorder implements the InCommand/InOutput framing state machine over
// raw PTY reads and writes finalized records to w.
type Recorder struct {
	w io.Writer

	mu         sync.Mutex
	inCommand  bool
	currentCmd bytes.Buffer
	currentOut bytes.Buffer
}

// NewRecorder builds a Recorder writing newline-delimited JSON to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w, inCommand: true}
}

// Feed processes one chunk of PTY output, updating the state machine and
// finalizing a record whenever a new prompt marker begins (spec.md §4.D
// framing table).
func (r *Recorder) Feed(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case bytes.HasPrefix(data, []byte(PromptMarker)):
		if !r.inCommand {
			r.flushLocked()
		}
		r.inCommand = true
	case r.inCommand && (bytes.Contains(data, []byte("\r\n")) || bytes.Contains(data, []byte("\n"))):
		r.inCommand = false
	}

	if r.inCommand {
		r.currentCmd.Write(data)
	} else {
		r.currentOut.Write(data)
	}
}

// Flush writes out the current in-progress record, if any. Called once
// more after the shell exits to capture a trailing block.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
}

func (r *Recorder) flushLocked() {
	if r.currentCmd.Len() == 0 {
		return
	}

	rec := record{
		Command: strings.TrimSpace(r.currentCmd.String()),
		Output:  strings.TrimSpace(r.currentOut.String()),
	}
	r.currentCmd.Reset()
	r.currentOut.Reset()

	encoded, err := json.Marshal(rec)
	if err != nil {
		logging.Log.Errorf("capture: failed to encode record: %v", err)
		return
	}
	if _, err := r.w.Write(append(encoded, '\n')); err != nil {
		logging.Log.Errorf("capture: failed to write record: %v", err)
		return
	}
	if f, ok := r.w.(*os.File); ok {
		f.Sync()
	}
}

// StartCapture spawns $SHELL (default /bin/sh) under a PTY, mirrors
// stdin/stdout transparently, and records framed command/output pairs to
// LogFilePath until the shell exits.
func StartCapture() error {
	lock, err := acquireLock()
	if err != nil {
		return err
	}
	defer lock.release()

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	logPath := LogFilePath()
	if err := os.MkdirAll(parentDir(logPath), 0700); err != nil {
		return err
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer logFile.Close()

	cmd := exec.Command(shell)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return err
	}
	defer ptmx.Close()

	recorder := NewRecorder(logFile)

	resize := make(chan os.Signal, 1)
	signal.Notify(resize, syscall.SIGWINCH)
	go func() {
		for range resize {
			pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	defer signal.Stop(resize)
	pty.InheritSize(os.Stdin, ptmx)

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err == nil {
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	go io.Copy(ptmx, os.Stdin)

	buf := make([]byte, 1024)
	for {
		n, readErr := ptmx.Read(buf)
		pty.InheritSize(os.Stdin, ptmx)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			recorder.Feed(chunk)
			os.Stdout.Write(chunk)
		}
		if readErr != nil {
			break
		}
	}

	recorder.Flush()
	return cmd.Wait()
}

func parentDir(path string) string {
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		return "."
	}
	return path[:idx]
}
