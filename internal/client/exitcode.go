package client

import (
	"errors"

	"github.com/godbus/dbus/v5"

	"github.com/command-line-assistant/clad/internal/daemon"
)

// sysexits-style exit codes, spec.md §6.
const (
	ExitSuccess       = 0
	ExitUsage         = 64
	ExitDataErr       = 65
	ExitUnavailable   = 69
	ExitSoftware      = 70
	ExitChatError     = 80
	ExitShellError    = 81
	ExitHistoryError  = 82
	ExitFeedbackError = 83
)

// busErrorToClient converts a raw *dbus.Error into a plain error,
// preserving its message; exitCodeFor inspects the same *dbus.Error
// later to pick the exit code, so this function never discards that
// information.
func busErrorToClient(err error) error {
	if err == nil {
		return nil
	}
	var dbusErr *dbus.Error
	if errors.As(err, &dbusErr) {
		return &busError{name: dbusErr.Name, err: dbusErr}
	}
	return err
}

// busError keeps the original D-Bus error name alongside a
// human-readable message, so callers can branch on it without
// string-matching English text.
type busError struct {
	name string
	err  error
}

func (e *busError) Error() string { return e.err.Error() }
func (e *busError) Unwrap() error { return e.err }

// exitCodeFor maps an error returned by a bus call (or a local
// validation/usage error) to one of spec.md §6's exit codes.
func exitCodeFor(err error, fallback int) int {
	if err == nil {
		return ExitSuccess
	}

	var be *busError
	if errors.As(err, &be) {
		switch be.name {
		case daemon.ErrNameChatNotFound:
			return ExitChatError
		case daemon.ErrNameHistoryNotEnabled, daemon.ErrNameHistoryNotAvailable:
			return ExitHistoryError
		case daemon.ErrNamePermissionDenied:
			return ExitUnavailable
		default:
			return ExitSoftware
		}
	}
	return fallback
}
