package client

import (
	"os"
	"strconv"
	"testing"

	"github.com/command-line-assistant/clad/internal/xdg"
)

func withStateHome(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	_ = xdg.StateHome()
}

func TestShowLegalNoticeOnceFirstCallReturnsTrue(t *testing.T) {
	withStateHome(t)
	if !showLegalNoticeOnce() {
		t.Fatal("expected the first call for a given parent pid to return true")
	}
}

func TestShowLegalNoticeOnceSecondCallReturnsFalse(t *testing.T) {
	withStateHome(t)
	showLegalNoticeOnce()
	if showLegalNoticeOnce() {
		t.Fatal("expected a second call for the same parent pid to return false")
	}
}

func TestShowLegalNoticeOnceDifferentParentReturnsTrue(t *testing.T) {
	withStateHome(t)
	if err := os.MkdirAll(parentDirOf(legalStateFile()), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(legalStateFile(), []byte("not-our-pid"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !showLegalNoticeOnce() {
		t.Fatal("expected a stale state file to still trigger the notice")
	}
	got, err := os.ReadFile(legalStateFile())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != strconv.Itoa(os.Getppid()) {
		t.Errorf("state file = %q, want current parent pid", got)
	}
}
