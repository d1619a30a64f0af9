package authz

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/command-line-assistant/clad/internal/identity"
)

type fakeResolver struct {
	uid int
	err error
}

func (f fakeResolver) UnixUserID(sender string) (int, error) {
	return f.uid, f.err
}

func newIdentityManager(t *testing.T) *identity.Manager {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "machine-id")
	if err := os.WriteFile(path, []byte("09e28913cb074ed995a239c93b07fd8a"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	old := identity.MachineIDPath
	identity.MachineIDPath = path
	t.Cleanup(func() { identity.MachineIDPath = old })
	return identity.NewManager()
}

func TestVerifyUnixUserSucceedsOnMatch(t *testing.T) {
	gate := NewGate(fakeResolver{uid: 1000}, newIdentityManager(t))
	ctx := WithSender(context.Background(), ":1.42")

	if err := gate.VerifyUnixUser(ctx, 1000); err != nil {
		t.Errorf("VerifyUnixUser = %v, want nil", err)
	}
}

func TestVerifyUnixUserFailsOnMismatch(t *testing.T) {
	gate := NewGate(fakeResolver{uid: 1000}, newIdentityManager(t))
	ctx := WithSender(context.Background(), ":1.42")

	if err := gate.VerifyUnixUser(ctx, 1001); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("VerifyUnixUser = %v, want ErrPermissionDenied", err)
	}
}

func TestVerifyUnixUserFailsClosedWithNoSender(t *testing.T) {
	gate := NewGate(fakeResolver{uid: 1000}, newIdentityManager(t))

	if err := gate.VerifyUnixUser(context.Background(), 1000); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("VerifyUnixUser with no sender = %v, want ErrPermissionDenied", err)
	}
}

func TestVerifyUnixUserFailsClosedOnResolverError(t *testing.T) {
	gate := NewGate(fakeResolver{err: errors.New("bus gone")}, newIdentityManager(t))
	ctx := WithSender(context.Background(), ":1.42")

	if err := gate.VerifyUnixUser(ctx, 1000); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("VerifyUnixUser with resolver error = %v, want ErrPermissionDenied", err)
	}
}

func TestVerifyInternalUserSucceedsOnMatch(t *testing.T) {
	idManager := newIdentityManager(t)
	gate := NewGate(fakeResolver{uid: 1000}, idManager)
	ctx := WithSender(context.Background(), ":1.42")

	want, err := idManager.GetUserID(1000)
	if err != nil {
		t.Fatalf("GetUserID: %v", err)
	}

	if err := gate.VerifyInternalUser(ctx, want.String()); err != nil {
		t.Errorf("VerifyInternalUser = %v, want nil", err)
	}
}

func TestVerifyInternalUserFailsOnMismatch(t *testing.T) {
	gate := NewGate(fakeResolver{uid: 1000}, newIdentityManager(t))
	ctx := WithSender(context.Background(), ":1.42")

	if err := gate.VerifyInternalUser(ctx, "not-the-right-uuid"); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("VerifyInternalUser = %v, want ErrPermissionDenied", err)
	}
}

func TestSenderRoundTrip(t *testing.T) {
	ctx := WithSender(context.Background(), ":1.7")
	if got := SenderFromContext(ctx); got != ":1.7" {
		t.Errorf("SenderFromContext = %q, want %q", got, ":1.7")
	}
	if got := SenderFromContext(context.Background()); got != "" {
		t.Errorf("SenderFromContext(empty ctx) = %q, want empty", got)
	}
}
