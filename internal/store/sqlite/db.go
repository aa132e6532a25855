// Package sqlite is an embedded storage backend for single-node deployments.
// It implements the same store interfaces as the Postgres stores; vectors are
// kept as JSON text instead of pgvector columns.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection shared by the stores.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{db: db, path: path}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DB) migrate() error {
	_, err := d.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS identities (
	id               TEXT PRIMARY KEY,
	core_label       TEXT NOT NULL,
	loss_aversion    REAL NOT NULL DEFAULT 2.0,
	emotions_enabled INTEGER NOT NULL DEFAULT 0,
	mass             REAL NOT NULL DEFAULT 0,
	resistance       REAL NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS beliefs (
	identity_id          TEXT NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
	position             INTEGER NOT NULL,
	name                 TEXT NOT NULL,
	strength             REAL NOT NULL,
	baseline_strength    REAL NOT NULL,
	experience_threshold INTEGER NOT NULL,
	experience_count     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (identity_id, name)
);

CREATE TABLE IF NOT EXISTS interactions (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	identity_id TEXT NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
	user_id     TEXT NOT NULL DEFAULT '',
	prompt      TEXT NOT NULL,
	response    TEXT NOT NULL,
	mass        REAL NOT NULL,
	resistance  REAL NOT NULL,
	feedback    TEXT,
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interactions_identity ON interactions (identity_id, seq);

CREATE TABLE IF NOT EXISTS aspirations (
	id                TEXT PRIMARY KEY,
	identity_id       TEXT NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
	name              TEXT NOT NULL,
	description       TEXT NOT NULL DEFAULT '',
	domain_vector     TEXT,
	strength          REAL NOT NULL,
	integration_style TEXT NOT NULL,
	created_at        TIMESTAMP NOT NULL,
	UNIQUE (identity_id, name)
);

CREATE TABLE IF NOT EXISTS standards (
	id              TEXT PRIMARY KEY,
	identity_id     TEXT NOT NULL REFERENCES identities(id) ON DELETE CASCADE,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	strength        REAL NOT NULL,
	semantic_vector TEXT,
	created_at      TIMESTAMP NOT NULL,
	UNIQUE (identity_id, name)
);
`

func isConstraint(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}
