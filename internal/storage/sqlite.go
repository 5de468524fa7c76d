package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/rshade/jirafocus/internal/config"
)

const createSettingsTable = `CREATE TABLE IF NOT EXISTS settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`

const upsertSetting = `INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// SQLiteBackend stores settings as key/value rows in a SQLite database.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path. Use ":memory:" for a
// private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening settings database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err = db.ExecContext(ctx, createSettingsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating settings table: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Load overlays every stored key onto dst. Unknown keys are skipped.
func (b *SQLiteBackend) Load(ctx context.Context, dst *config.Settings) error {
	rows, err := b.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool, len(config.Keys()))
	for _, k := range config.Keys() {
		known[k] = true
	}

	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning setting: %w", err)
		}
		if !known[key] {
			continue
		}
		if err = dst.Set(key, value); err != nil {
			return fmt.Errorf("applying stored setting %s: %w", key, err)
		}
	}
	return rows.Err()
}

// Save upserts every key in one transaction.
func (b *SQLiteBackend) Save(ctx context.Context, s config.Settings) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning settings transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertSetting)
	if err != nil {
		return fmt.Errorf("preparing settings upsert: %w", err)
	}
	defer stmt.Close()

	for _, key := range config.Keys() {
		value, getErr := s.Get(key)
		if getErr != nil {
			return getErr
		}
		if _, err = stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("storing setting %s: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing settings: %w", err)
	}
	return nil
}

// Close releases the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
