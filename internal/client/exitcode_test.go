package client

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"

	"github.com/command-line-assistant/clad/internal/daemon"
)

func TestBusErrorToClientPreservesName(t *testing.T) {
	raw := dbus.NewError(daemon.ErrNameChatNotFound, []interface{}{"no such chat"})
	err := busErrorToClient(raw)

	var be *busError
	if !errors.As(err, &be) {
		t.Fatalf("expected a *busError, got %T", err)
	}
	if be.name != daemon.ErrNameChatNotFound {
		t.Errorf("name = %q, want %q", be.name, daemon.ErrNameChatNotFound)
	}
}

func TestBusErrorToClientPassesThroughNonDBusErrors(t *testing.T) {
	plain := errors.New("connection refused")
	if got := busErrorToClient(plain); got != plain {
		t.Errorf("expected the original error to pass through unchanged, got %v", got)
	}
}

func TestExitCodeForMapsKnownNames(t *testing.T) {
	cases := map[string]int{
		daemon.ErrNameChatNotFound:        ExitChatError,
		daemon.ErrNameHistoryNotEnabled:   ExitHistoryError,
		daemon.ErrNameHistoryNotAvailable: ExitHistoryError,
		daemon.ErrNamePermissionDenied:    ExitUnavailable,
		daemon.ErrNameGeneric:             ExitSoftware,
	}

	for name, want := range cases {
		err := busErrorToClient(dbus.NewError(name, []interface{}{"detail"}))
		if got := exitCodeFor(err, ExitSoftware); got != want {
			t.Errorf("exitCodeFor(%s) = %d, want %d", name, got, want)
		}
	}
}

func TestExitCodeForNilIsSuccess(t *testing.T) {
	if got := exitCodeFor(nil, ExitSoftware); got != ExitSuccess {
		t.Errorf("exitCodeFor(nil) = %d, want %d", got, ExitSuccess)
	}
}

func TestExitCodeForUsesFallbackForNonDBusErrors(t *testing.T) {
	if got := exitCodeFor(errors.New("boom"), ExitUsage); got != ExitUsage {
		t.Errorf("exitCodeFor(plain) = %d, want fallback %d", got, ExitUsage)
	}
}
