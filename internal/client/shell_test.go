package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBashrcLoadsRCDDetectsSnippet(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, ".bashrc"), []byte("source ~/.bashrc.d/*.bashrc\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !bashrcLoadsRCD() {
		t.Error("expected bashrcLoadsRCD to detect the .bashrc.d reference")
	}
}

func TestBashrcLoadsRCDMissingFilesReturnsFalse(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if bashrcLoadsRCD() {
		t.Error("expected bashrcLoadsRCD to return false with no rc files present")
	}
}

func TestWriteAndRemoveBashFunctions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	render := NewRenderer(true)
	path := interactiveIntegrationFile()

	if err := writeBashFunctions(render, path, bashInteractiveSnippet); err != nil {
		t.Fatalf("writeBashFunctions: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected integration file to exist: %v", err)
	}

	if err := writeBashFunctions(render, path, bashInteractiveSnippet); err != nil {
		t.Fatalf("writeBashFunctions (already present): %v", err)
	}

	if err := removeBashFunctions(render, path); err != nil {
		t.Fatalf("removeBashFunctions: %v", err)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatal("expected integration file to be removed")
	}

	if err := removeBashFunctions(render, path); err != nil {
		t.Fatalf("removeBashFunctions (already absent): %v", err)
	}
}
