// Package identity derives the daemon's internal per-user identifier from
// the host's machine-id and an OS user id (spec.md §4.A).
package identity

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MachineIDPath is the well-known host file holding the systemd machine-id.
// Overridable in tests.
var MachineIDPath = "/etc/machine-id"

// ErrIdentityUnavailable is returned when the machine-id file is missing,
// empty, or malformed.
var ErrIdentityUnavailable = errors.New("identity unavailable")

// Manager resolves OS user ids into stable internal UserIds. It memoizes
// the machine id on first use; all other work is a pure function of
// (machineID, osUserID).
type Manager struct {
	once      sync.Once
	initErr   error
	machineID uuid.UUID
}

// NewManager creates a Manager. The machine-id file is not read until the
// first call to GetUserID.
func NewManager() *Manager {
	return &Manager{}
}

// MachineID returns the machine's UUID, reading and parsing
// MachineIDPath on first call and memoizing the result.
func (m *Manager) MachineID() (uuid.UUID, error) {
	m.once.Do(func() {
		raw, err := os.ReadFile(MachineIDPath)
		if err != nil {
			m.initErr = fmt.Errorf("%w: reading %s: %v", ErrIdentityUnavailable, MachineIDPath, err)
			return
		}

		trimmed := strings.TrimSpace(string(raw))
		if trimmed == "" {
			m.initErr = fmt.Errorf("%w: %s is empty", ErrIdentityUnavailable, MachineIDPath)
			return
		}

		id, err := parseMachineID(trimmed)
		if err != nil {
			m.initErr = fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
			return
		}

		m.machineID = id
	})

	return m.machineID, m.initErr
}

// parseMachineID accepts both the raw 32-hex-digit systemd machine-id
// format and canonical dashed UUID strings.
func parseMachineID(raw string) (uuid.UUID, error) {
	if len(raw) == 32 && !strings.Contains(raw, "-") {
		raw = fmt.Sprintf("%s-%s-%s-%s-%s", raw[0:8], raw[8:12], raw[12:16], raw[16:20], raw[20:32])
	}
	return uuid.Parse(raw)
}

// GetUserID derives the stable internal UserId for the given OS user id.
//
// The result is uuid5(namespace=MachineId, name=decimal(osUserID)): the
// same (machine, os user) pair always yields the same UserId, and
// different machines or different OS users yield different ones.
func (m *Manager) GetUserID(osUserID int) (uuid.UUID, error) {
	machineID, err := m.MachineID()
	if err != nil {
		return uuid.UUID{}, err
	}

	name := strconv.Itoa(osUserID)
	return uuid.NewSHA1(machineID, []byte(name)), nil
}
