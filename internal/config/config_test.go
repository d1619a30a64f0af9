package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("Logging.Level = %q, want INFO", cfg.Logging.Level)
	}
}

func TestLoadParsesFileAndValidates(t *testing.T) {
	path := writeConfig(t, `
[database]
type = "postgresql"
host = "db.internal"
port = 5432
database = "clad"
username = "clad"

[history]
enabled = true

[backend]
endpoint = "https://inference.example.com"

[logging]
level = "DEBUG"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Type != "postgresql" || cfg.Database.Host != "db.internal" {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Backend.Endpoint != "https://inference.example.com" {
		t.Errorf("Backend.Endpoint = %q", cfg.Backend.Endpoint)
	}
}

func TestLoadHealthTableDefaultsToDisabled(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Health.Enabled {
		t.Errorf("Health.Enabled = true, want false by default")
	}
}

func TestLoadParsesHealthTable(t *testing.T) {
	path := writeConfig(t, `
[database]
type = "sqlite"
connection_string = "clad.db"

[backend]
endpoint = "https://inference.example.com"

[logging]
level = "INFO"

[health]
enabled = true
addr = "127.0.0.1:9999"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Health.Enabled || cfg.Health.Addr != "127.0.0.1:9999" {
		t.Errorf("unexpected health config: %+v", cfg.Health)
	}
}

func TestLoadRejectsInvalidDialect(t *testing.T) {
	path := writeConfig(t, `
[database]
type = "oracle"

[backend]
endpoint = "https://inference.example.com"

[logging]
level = "INFO"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unrecognized database.type")
	}
}

func TestLoadRejectsMissingBackendEndpoint(t *testing.T) {
	path := writeConfig(t, `
[database]
type = "sqlite"
connection_string = "clad.db"

[logging]
level = "INFO"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a missing backend.endpoint")
	}
}

func TestApplyEnvOverridesPrefersEnvProxy(t *testing.T) {
	t.Setenv("http_proxy", "http://proxy.internal:3128")
	t.Setenv("https_proxy", "")

	cfg := Default()
	cfg.Backend.Proxies.HTTP = "http://configured-proxy:8080"
	applyEnvOverrides(cfg)

	if cfg.Backend.Proxies.HTTP != "http://proxy.internal:3128" {
		t.Errorf("Proxies.HTTP = %q, want env override", cfg.Backend.Proxies.HTTP)
	}
}
