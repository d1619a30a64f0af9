package daemon

import (
	"errors"

	"github.com/godbus/dbus/v5"

	"github.com/command-line-assistant/clad/internal/authz"
	"github.com/command-line-assistant/clad/internal/storage"
)

// Named bus errors, mirroring
// original_source/dbus/exceptions.py's ChatNotFoundError/
// HistoryNotEnabledError/HistoryNotAvailableError. Exported so
// internal/client can map a returned *dbus.Error back to the taxonomy
// in spec.md §7 without string-matching English text.
const (
	ErrNameChatNotFound        = Namespace + ".chat.Error.NotFound"
	ErrNameHistoryNotEnabled   = Namespace + ".history.Error.NotEnabled"
	ErrNameHistoryNotAvailable = Namespace + ".history.Error.NotAvailable"
	ErrNamePermissionDenied    = Namespace + ".Error.PermissionDenied"
	ErrNameGeneric             = Namespace + ".Error.Failed"
)

// ErrHistoryNotEnabled is returned by History methods when history
// collection is disabled in configuration.
var ErrHistoryNotEnabled = errors.New("daemon: history is not enabled")

// ErrHistoryNotAvailable is returned when a History method finds no
// records for the requested scope.
var ErrHistoryNotAvailable = errors.New("daemon: no history available; try asking something first")

// toDBusError maps an internal error into the *dbus.Error clients
// receive, preserving enough identity for the client to branch on it
// (spec.md §4.G / §4.H exit-code mapping).
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, storage.ErrChatNotFound):
		return dbus.NewError(ErrNameChatNotFound, []interface{}{err.Error()})
	case errors.Is(err, ErrHistoryNotEnabled):
		return dbus.NewError(ErrNameHistoryNotEnabled, []interface{}{err.Error()})
	case errors.Is(err, ErrHistoryNotAvailable):
		return dbus.NewError(ErrNameHistoryNotAvailable, []interface{}{err.Error()})
	case errors.Is(err, authz.ErrPermissionDenied):
		return dbus.NewError(ErrNamePermissionDenied, []interface{}{err.Error()})
	default:
		return dbus.NewError(ErrNameGeneric, []interface{}{err.Error()})
	}
}
