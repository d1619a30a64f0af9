// Package config loads and validates the daemon/client's TOML
// configuration file (spec.md §6), the Go analogue of
// config/config.go's Load/Validate pair, parsed with
// github.com/pelletier/go-toml/v2 and validated with
// github.com/go-playground/validator/v10 instead of the teacher's
// hand-rolled env-var getters.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/command-line-assistant/clad/internal/logging"
)

// Config is the root of the TOML document, mirroring spec.md §6's four
// top-level tables.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	History  HistoryConfig  `toml:"history"`
	Backend  BackendConfig  `toml:"backend"`
	Logging  LoggingConfig  `toml:"logging"`
	Health   HealthConfig   `toml:"health"`
}

// HealthConfig controls the supplemented loopback debug/metrics surface
// (SPEC_FULL.md §4.G), off by default and never exposed beyond
// 127.0.0.1.
type HealthConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// DatabaseConfig selects and configures the storage dialect.
type DatabaseConfig struct {
	Type             string `toml:"type" validate:"required,oneof=sqlite mysql postgresql"`
	ConnectionString string `toml:"connection_string"`
	Host             string `toml:"host"`
	Port             int    `toml:"port" validate:"omitempty,min=1,max=65535"`
	Database         string `toml:"database"`
	Username         string `toml:"username"`
	Password         string `toml:"password"`
}

// HistoryConfig turns history persistence on or off.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

// BackendConfig describes the inference service this daemon calls.
type BackendConfig struct {
	Endpoint string     `toml:"endpoint" validate:"required,url"`
	Auth     AuthConfig `toml:"auth"`
	Proxies  Proxies    `toml:"proxies"`
}

// AuthConfig carries mutual-TLS material and the verify_ssl toggle.
type AuthConfig struct {
	CertFile  string `toml:"cert_file"`
	KeyFile   string `toml:"key_file"`
	VerifySSL bool   `toml:"verify_ssl"`
}

// Proxies configures per-scheme proxy routing for the inference client.
type Proxies struct {
	HTTP  string `toml:"http"`
	HTTPS string `toml:"https"`
}

// LoggingConfig controls the root log level and audit tagging.
type LoggingConfig struct {
	Level string     `toml:"level" validate:"required,oneof=CRITICAL ERROR WARNING INFO DEBUG NOTSET"`
	Audit AuditConfig `toml:"audit"`
}

// AuditConfig holds the [logging.audit] table. Its Enabled value is
// parsed but not consulted: audit-tagged records are always emitted.
type AuditConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no file is present: an
// embedded sqlite database at the relative path clad.db, history
// enabled, INFO logging, no inference backend configured (there is no
// sensible default endpoint). Validate rejects this value for its empty
// backend.endpoint; Load returns it without validating.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Type: "sqlite", ConnectionString: "clad.db"},
		History:  HistoryConfig{Enabled: true},
		Logging:  LoggingConfig{Level: logging.LevelInfo},
	}
}

// Load reads and parses the TOML file at path, applies the environment
// overrides and validates the result. An empty path, or a path where no
// file exists, yields Default() as is. This function only ever opens the
// path it's given; it does not search any other location.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate enforces the struct tags above and reports every violation
// the client can act on.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides layers the spec's environment-variable overrides on
// top of file-provided values (spec.md §6): http_proxy/https_proxy take
// precedence over backend.proxies when set, matching the convention
// every proxy-aware HTTP client on the host already follows.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("http_proxy"); v != "" {
		cfg.Backend.Proxies.HTTP = v
	}
	if v := os.Getenv("https_proxy"); v != "" {
		cfg.Backend.Proxies.HTTPS = v
	}
}
