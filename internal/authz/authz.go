// Package authz implements the daemon's caller-verification gate
// (spec.md §4.F): every bus call is checked against the OS user that
// actually owns the connection, fail-closed.
//
// It transcribes
// original_source/dbus/interfaces/authorization.py's
// DBusAuthorizationMixin. Python threads the D-Bus sender string through
// thread-local storage (dbus/sender_context.py); Go has no implicit
// per-goroutine storage, so this package makes that threading explicit
// via context.Context, per spec.md §9's design note.
package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/command-line-assistant/clad/internal/identity"
	"github.com/command-line-assistant/clad/internal/logging"
)

// ErrPermissionDenied is returned for every authorization failure: an
// unresolvable sender, or a mismatched requester.
var ErrPermissionDenied = errors.New("authz: permission denied")

// senderKey is the context key WithSender/SenderFromContext use.
type senderKey struct{}

// WithSender attaches the D-Bus sender name to ctx, replacing the
// thread-local sender_context original_source uses.
func WithSender(ctx context.Context, sender string) context.Context {
	return context.WithValue(ctx, senderKey{}, sender)
}

// SenderFromContext returns the sender name attached by WithSender, or
// "" if none was attached.
func SenderFromContext(ctx context.Context) string {
	sender, _ := ctx.Value(senderKey{}).(string)
	return sender
}

// UnixUserResolver resolves a D-Bus sender name to the Unix user id that
// owns the connection. The concrete implementation (in internal/daemon)
// calls org.freedesktop.DBus's GetConnectionUnixUser; this package stays
// transport-agnostic and fails closed if the resolver errors.
type UnixUserResolver interface {
	UnixUserID(sender string) (int, error)
}

// Gate performs every authorization check the daemon's interfaces need.
type Gate struct {
	resolver UnixUserResolver
	identity *identity.Manager
}

// NewGate builds a Gate bound to the given resolver and identity
// manager.
func NewGate(resolver UnixUserResolver, identityManager *identity.Manager) *Gate {
	return &Gate{resolver: resolver, identity: identityManager}
}

// callerUnixUserID resolves ctx's sender to a Unix user id, failing
// closed (ErrPermissionDenied) on any resolver error.
func (g *Gate) callerUnixUserID(ctx context.Context) (int, error) {
	sender := SenderFromContext(ctx)
	if sender == "" {
		logging.Log.AuditWarn("authz: no sender attached to context")
		return 0, ErrPermissionDenied
	}

	uid, err := g.resolver.UnixUserID(sender)
	if err != nil {
		logging.Log.AuditWarn("authz: could not resolve caller unix user id for sender %q: %v", sender, err)
		return 0, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return uid, nil
}

// VerifyUnixUser checks that ctx's caller is the same OS user as
// requestedUnixUserID, used by User.GetUserId (spec.md §4.F's "OS-UID
// form").
func (g *Gate) VerifyUnixUser(ctx context.Context, requestedUnixUserID int) error {
	callerID, err := g.callerUnixUserID(ctx)
	if err != nil {
		return err
	}

	if callerID != requestedUnixUserID {
		logging.Log.AuditWarn(
			"authz: caller unix user id %d does not match requested unix user id %d",
			callerID, requestedUnixUserID,
		)
		return fmt.Errorf("%w: unix user id mismatch", ErrPermissionDenied)
	}
	return nil
}

// VerifyInternalUser checks that ctx's caller, once converted to its
// internal UserId via identity.Manager, matches requestedUserID; used by
// every Chat/History method (spec.md §4.F's "internal-UserId form").
func (g *Gate) VerifyInternalUser(ctx context.Context, requestedUserID string) error {
	callerUnixID, err := g.callerUnixUserID(ctx)
	if err != nil {
		return err
	}

	callerInternalID, err := g.identity.GetUserID(callerUnixID)
	if err != nil {
		logging.Log.AuditWarn("authz: could not resolve internal user id for unix user %d: %v", callerUnixID, err)
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	if callerInternalID.String() != requestedUserID {
		logging.Log.AuditWarn(
			"authz: caller user id %q does not match requested user id %q",
			callerInternalID.String(), requestedUserID,
		)
		return fmt.Errorf("%w: user id mismatch", ErrPermissionDenied)
	}
	return nil
}
