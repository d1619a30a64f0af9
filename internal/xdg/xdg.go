// Package xdg resolves the handful of XDG base-directory paths clad
// needs, following the fallbacks spec.md §6 and §9 specify rather than
// pulling in a general-purpose XDG library.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "command-line-assistant"

// StateHome returns $XDG_STATE_HOME, falling back to ~/.local/state.
func StateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".local", "state")
}

// DataHome returns $XDG_DATA_HOME, falling back to ~/.local/share.
func DataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	return filepath.Join(homeDir(), ".local", "share")
}

// ConfigDirs returns $XDG_CONFIG_DIRS, falling back to /etc/xdg.
func ConfigDirs() string {
	if v := os.Getenv("XDG_CONFIG_DIRS"); v != "" {
		return v
	}
	return "/etc/xdg"
}

// StatePath joins StateHome with the app's own subdirectory and the
// given path elements, e.g. StatePath("terminal.log").
func StatePath(elem ...string) string {
	return filepath.Join(append([]string{StateHome(), appName}, elem...)...)
}

// DataPath joins DataHome with the app's own subdirectory.
func DataPath(elem ...string) string {
	return filepath.Join(append([]string{DataHome(), appName}, elem...)...)
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "/root"
}
