package daemon

import (
	"context"

	"github.com/godbus/dbus/v5"

	"github.com/command-line-assistant/clad/internal/authz"
	"github.com/command-line-assistant/clad/internal/identity"
)

// UserService implements the `com.redhat.lightspeed.user` interface,
// transcribing original_source/dbus/interfaces/user.py's UserInterface.
type UserService struct {
	identity *identity.Manager
	gate     *authz.Gate
}

func newUserService(identityManager *identity.Manager, gate *authz.Gate) *UserService {
	return &UserService{identity: identityManager, gate: gate}
}

// GetUserId returns the internal UserId derived from effectiveUserID,
// after verifying the caller can only ask about its own Unix user id.
func (s *UserService) GetUserId(effectiveUserID int32, sender dbus.Sender) (string, *dbus.Error) {
	ctx := authz.WithSender(context.Background(), string(sender))
	if err := s.gate.VerifyUnixUser(ctx, int(effectiveUserID)); err != nil {
		return "", toDBusError(err)
	}

	userID, err := s.identity.GetUserID(int(effectiveUserID))
	if err != nil {
		return "", toDBusError(err)
	}
	return userID.String(), nil
}
