package capture

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func records(t *testing.T, buf *bytes.Buffer) []record {
	t.Helper()
	var out []record
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if line == "" {
			continue
		}
		var r record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, r)
	}
	return out
}

func TestRecorderFinalizesOnNextPrompt(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	r.Feed([]byte(PromptMarker + "ls -la"))
	r.Feed([]byte("\n"))
	r.Feed([]byte("total 0\ndrwxr-xr-x\n"))
	r.Feed([]byte(PromptMarker + "pwd"))

	got := records(t, &buf)
	if len(got) != 1 {
		t.Fatalf("expected 1 finalized record, got %d: %+v", len(got), got)
	}
	if !strings.Contains(got[0].Command, "ls -la") {
		t.Errorf("command = %q, want to contain %q", got[0].Command, "ls -la")
	}
	if !strings.Contains(got[0].Output, "total 0") {
		t.Errorf("output = %q, want to contain %q", got[0].Output, "total 0")
	}
}

func TestRecorderFlushWritesTrailingRecord(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	r.Feed([]byte(PromptMarker + "echo hi"))
	r.Feed([]byte("\n"))
	r.Feed([]byte("hi\n"))
	r.Flush()

	got := records(t, &buf)
	if len(got) != 1 {
		t.Fatalf("expected 1 record after Flush, got %d", len(got))
	}
	if got[0].Output != "hi" {
		t.Errorf("output = %q, want %q", got[0].Output, "hi")
	}
}

func TestRecorderIgnoresBytesBeforeFirstCommandCompletes(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	// No command has started yet (no prompt marker observed); nothing
	// should ever finalize since currentCmd stays empty.
	r.Feed([]byte("stray banner text\n"))
	r.Flush()

	if buf.Len() != 0 {
		t.Errorf("expected no records written, got %q", buf.String())
	}
}
