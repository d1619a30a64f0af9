// Package storage implements the relational store for chats, history and
// interactions described in spec.md §4.B: a repository per entity, each
// owning one table, all soft-delete aware and scoped to a user_id.
//
// It follows the teacher's (GhiaC-Agentize's store/sqlite.go) habit of
// talking to the database through the standard library's database/sql
// rather than an ORM, generalized to the three dialects spec.md requires
// and to the session-per-call discipline of
// original_source/daemon/database/manager.py.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/command-line-assistant/clad/internal/logging"
)

// Dialect identifies which of the three supported database engines a
// Config targets.
type Dialect string

const (
	DialectSQLite     Dialect = "sqlite"
	DialectMySQL      Dialect = "mysql"
	DialectPostgreSQL Dialect = "postgresql"
)

// Config describes how to reach the database, mirroring the
// `database.*` table in spec.md §6.
type Config struct {
	Type             Dialect
	ConnectionString string // embedded (sqlite) file path
	Host             string
	Port             int
	Database         string
	Username         string
	Password         string

	// CredentialsDirectory, when non-empty, is searched for files named
	// "username" and "password" whose contents take precedence over the
	// Username/Password fields above (spec.md §9 "Credential loading",
	// the Go analogue of systemd's CREDENTIALS_DIRECTORY).
	CredentialsDirectory string
}

// Engine owns the *sql.DB and the dialect-specific knobs every repository
// needs (driver name, placeholder style, the soft-delete helper).
type Engine struct {
	db      *sql.DB
	dialect Dialect
}

// Open constructs the driver-level *sql.DB for the configured dialect,
// applies the pooling policy from spec.md §4.B, and creates the schema if
// it doesn't exist yet.
func Open(cfg Config) (*Engine, error) {
	cfg = applyCredentials(cfg)

	driverName, dsn, err := dsnFor(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrConnection, cfg.Type, err)
	}

	if cfg.Type == DialectSQLite {
		// A single shared connection, safe for concurrent use, with
		// same-thread assertions disabled (mirrors SQLAlchemy's
		// StaticPool + check_same_thread=False for the embedded case).
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		// Networked dialects: pre-ping pool, base size 5, up to 10
		// overflow connections (spec.md §4.B).
		db.SetMaxOpenConns(15)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(10 * time.Minute)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: pre-ping failed for %s: %v", ErrConnection, cfg.Type, err)
		}
	}

	eng := &Engine{db: db, dialect: cfg.Type}
	if err := eng.createSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return eng, nil
}

// Close releases the underlying connection pool.
func (e *Engine) Close() error {
	return e.db.Close()
}

func dsnFor(cfg Config) (driverName, dsn string, err error) {
	switch cfg.Type {
	case DialectSQLite:
		path := cfg.ConnectionString
		if path == "" {
			path = ":memory:"
		}
		if path != ":memory:" {
			if dir := filepath.Dir(path); dir != "." && dir != "" {
				if mkErr := os.MkdirAll(dir, 0700); mkErr != nil {
					return "", "", fmt.Errorf("creating database directory: %w", mkErr)
				}
			}
		}
		return "sqlite", path, nil

	case DialectMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		return "mysql", dsn, nil

	case DialectPostgreSQL:
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		return "postgres", dsn, nil

	default:
		return "", "", fmt.Errorf("unsupported dialect %q", cfg.Type)
	}
}

// applyCredentials loads username/password from CredentialsDirectory when
// set, falling back to the config-supplied values (spec.md §9).
func applyCredentials(cfg Config) Config {
	if cfg.CredentialsDirectory == "" {
		return cfg
	}

	if user, err := os.ReadFile(filepath.Join(cfg.CredentialsDirectory, "username")); err == nil {
		cfg.Username = trimNewline(string(user))
	}
	if pass, err := os.ReadFile(filepath.Join(cfg.CredentialsDirectory, "password")); err == nil {
		cfg.Password = trimNewline(string(pass))
	}

	return cfg
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

const schema = `
CREATE TABLE IF NOT EXISTS chats (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_chats_user_name_live ON chats(user_id, name) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS histories (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	chat_id TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_histories_user_id ON histories(user_id);
CREATE INDEX IF NOT EXISTS idx_histories_chat_id ON histories(chat_id);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	history_id TEXT NOT NULL,
	question TEXT NOT NULL,
	response TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_interactions_history_id ON interactions(history_id);
`

func (e *Engine) createSchema() error {
	// sqlite's unique-partial-index syntax ("WHERE deleted_at IS NULL")
	// isn't supported by MySQL; for that dialect we fall back to
	// enforcing the live-name uniqueness in the repository layer instead
	// of the schema.
	stmt := schema
	if e.dialect == DialectMySQL {
		stmt = mysqlSchema
	}

	if _, err := e.db.Exec(stmt); err != nil {
		return fmt.Errorf("%w: creating schema: %v", ErrConnection, err)
	}

	logging.Log.Infof("storage: schema ready for dialect %s", e.dialect)
	return nil
}

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS chats (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL,
	name VARCHAR(25) NOT NULL,
	description TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP NULL,
	INDEX idx_chats_user_id (user_id)
);

CREATE TABLE IF NOT EXISTS histories (
	id VARCHAR(36) PRIMARY KEY,
	user_id VARCHAR(36) NOT NULL,
	chat_id VARCHAR(36) NOT NULL,
	created_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP NULL,
	INDEX idx_histories_user_id (user_id),
	INDEX idx_histories_chat_id (chat_id)
);

CREATE TABLE IF NOT EXISTS interactions (
	id VARCHAR(36) PRIMARY KEY,
	history_id VARCHAR(36) NOT NULL,
	question TEXT NOT NULL,
	response TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	deleted_at TIMESTAMP NULL,
	INDEX idx_interactions_history_id (history_id)
);
`
