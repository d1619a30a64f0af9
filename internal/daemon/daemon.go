// Package daemon exposes the three D-Bus services the client drives:
// Chat, History and User (spec.md §4.G). Each is a thin orchestration
// layer over internal/storage, internal/llmclient and internal/authz,
// transcribing
// original_source/dbus/interfaces/{chat,history,user}.py onto
// github.com/godbus/dbus/v5.
package daemon

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/command-line-assistant/clad/internal/authz"
	"github.com/command-line-assistant/clad/internal/identity"
	"github.com/command-line-assistant/clad/internal/llmclient"
	"github.com/command-line-assistant/clad/internal/logging"
	"github.com/command-line-assistant/clad/internal/storage"
)

// Namespace is the bus name prefix every exported service shares,
// mirroring original_source/dbus/constants.py's SERVICE_NAMESPACE.
const Namespace = "com.redhat.lightspeed"

// Daemon owns the system bus connection and every exported object.
type Daemon struct {
	conn *dbus.Conn

	chat    *ChatService
	history *HistoryService
	user    *UserService
	health  *HealthServer
}

// Config bundles everything the daemon's services need to construct.
type Config struct {
	Engine          *storage.Engine
	Provider        llmclient.Provider
	IdentityManager *identity.Manager
	HistoryEnabled  bool
	Health          HealthConfig
}

// Connect opens the system bus, builds the authorization gate and the
// three services, and exports them under the clad namespace.
func Connect(cfg Config) (*Daemon, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("daemon: connecting to system bus: %w", err)
	}

	reply, err := conn.RequestName(Namespace, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("daemon: requesting bus name %s: %w", Namespace, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("daemon: bus name %s already owned", Namespace)
	}

	gate := authz.NewGate(&busResolver{conn: conn}, cfg.IdentityManager)

	d := &Daemon{
		conn:    conn,
		chat:    newChatService(storage.NewChatRepository(cfg.Engine), storage.NewHistoryRepository(cfg.Engine), storage.NewInteractionRepository(cfg.Engine), cfg.Provider, gate),
		history: newHistoryService(storage.NewHistoryRepository(cfg.Engine), storage.NewInteractionRepository(cfg.Engine), storage.NewChatRepository(cfg.Engine), gate, cfg.HistoryEnabled),
		user:    newUserService(cfg.IdentityManager, gate),
	}

	if err := d.export(); err != nil {
		conn.Close()
		return nil, err
	}

	health, err := StartHealthServer(cfg.Health)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("daemon: starting health server: %w", err)
	}
	d.health = health

	return d, nil
}

func (d *Daemon) export() error {
	objects := []struct {
		path  dbus.ObjectPath
		iface string
		impl  any
	}{
		{"/com/redhat/lightspeed/chat", Namespace + ".chat", d.chat},
		{"/com/redhat/lightspeed/history", Namespace + ".history", d.history},
		{"/com/redhat/lightspeed/user", Namespace + ".user", d.user},
	}

	for _, obj := range objects {
		if err := d.conn.Export(obj.impl, obj.path, obj.iface); err != nil {
			return fmt.Errorf("daemon: exporting %s: %w", obj.iface, err)
		}

		node := &introspect.Node{
			Name: string(obj.path),
			Interfaces: []introspect.Interface{
				introspect.IntrospectData,
				{Name: obj.iface},
			},
		}
		if err := d.conn.Export(introspect.NewIntrospectable(node), obj.path, "org.freedesktop.DBus.Introspectable"); err != nil {
			return fmt.Errorf("daemon: exporting introspection for %s: %w", obj.iface, err)
		}
	}

	logging.Log.Infof("daemon: exported chat/history/user services under %s", Namespace)
	return nil
}

// Close releases the bus connection and stops the health server.
func (d *Daemon) Close() error {
	if err := d.health.Close(); err != nil {
		logging.Log.Warnf("daemon: closing health server: %v", err)
	}
	return d.conn.Close()
}

// busResolver implements authz.UnixUserResolver against the live system
// bus connection, the Go analogue of
// original_source/dbus/interfaces/authorization.py's
// _get_caller_unix_user_id (a GetConnectionUnixUser call against
// org.freedesktop.DBus).
type busResolver struct {
	conn *dbus.Conn
}

func (r *busResolver) UnixUserID(sender string) (int, error) {
	obj := r.conn.Object("org.freedesktop.DBus", "/org/freedesktop/DBus")
	var uid uint32
	err := obj.Call("org.freedesktop.DBus.GetConnectionUnixUser", 0, sender).Store(&uid)
	if err != nil {
		return 0, err
	}
	return int(uid), nil
}
