// Command clad is the privileged daemon: it owns the database, the
// inference HTTP client, and the session-identity/authorization surface,
// and exports the chat/history/user services on the system bus
// (spec.md §2, §4.G).
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/command-line-assistant/clad/internal/config"
	"github.com/command-line-assistant/clad/internal/daemon"
	"github.com/command-line-assistant/clad/internal/identity"
	"github.com/command-line-assistant/clad/internal/llmclient"
	"github.com/command-line-assistant/clad/internal/logging"
	"github.com/command-line-assistant/clad/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "/etc/clad/config.toml", "Path to the daemon's TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Log.Errorf("clad: %v", err)
		os.Exit(1)
	}
	logging.Configure(cfg.Logging.Level)

	engine, err := storage.Open(storage.Config{
		Type:             storage.Dialect(cfg.Database.Type),
		ConnectionString: cfg.Database.ConnectionString,
		Host:             cfg.Database.Host,
		Port:             cfg.Database.Port,
		Database:         cfg.Database.Database,
		Username:         cfg.Database.Username,
		Password:         cfg.Database.Password,

		CredentialsDirectory: os.Getenv("CREDENTIALS_DIRECTORY"),
	})
	if err != nil {
		logging.Log.Errorf("clad: opening storage engine: %v", err)
		os.Exit(1)
	}
	defer engine.Close()

	provider, err := llmclient.NewRESTProvider(cfg.Backend.Endpoint, Version, llmclient.TLSConfig{
		VerifySSL: cfg.Backend.Auth.VerifySSL,
		CertFile:  cfg.Backend.Auth.CertFile,
		KeyFile:   cfg.Backend.Auth.KeyFile,
	}, llmclient.ProxyConfig{
		HTTPProxy:  cfg.Backend.Proxies.HTTP,
		HTTPSProxy: cfg.Backend.Proxies.HTTPS,
	})
	if err != nil {
		logging.Log.Errorf("clad: building inference client: %v", err)
		os.Exit(1)
	}

	d, err := daemon.Connect(daemon.Config{
		Engine:          engine,
		Provider:        provider,
		IdentityManager: identity.NewManager(),
		HistoryEnabled:  cfg.History.Enabled,
		Health: daemon.HealthConfig{
			Enabled: cfg.Health.Enabled,
			Addr:    cfg.Health.Addr,
		},
	})
	if err != nil {
		logging.Log.Errorf("clad: connecting to the system bus: %v", err)
		os.Exit(1)
	}
	defer d.Close()

	logging.Log.Infof("clad: daemon ready")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logging.Log.Infof("clad: shutting down")
}
