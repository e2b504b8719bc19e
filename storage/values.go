package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Value is a single row of the entries table
type Value struct {
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Values is a sqlite backed Store
type Values struct {
	db *sqlx.DB
}

// NewValues creates a new Values storage
func NewValues(db *sqlx.DB) (*Values, error) {
	createValuesTable := `
	CREATE TABLE IF NOT EXISTS entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)
	`
	if _, err := db.Exec(createValuesTable); err != nil {
		return nil, fmt.Errorf("failed to create entries table: %w", err)
	}

	return &Values{db: db}, nil
}

// OpenValues opens (or creates) the sqlite file at path and prepares the entries table
func OpenValues(path string) (*Values, error) {
	db, err := NewSqliteDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	values, err := NewValues(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return values, nil
}

// Get returns the value stored under key
func (v *Values) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := v.db.GetContext(ctx, &value, `SELECT value FROM entries WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get value for key %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key, overwriting any previous value
func (v *Values) Set(ctx context.Context, key, value string) error {
	upsertQuery := `INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	now := time.Now()
	if _, err := v.db.ExecContext(ctx, upsertQuery, key, value, now); err != nil {
		return fmt.Errorf("failed to write value for key %s: %w", key, err)
	}

	slog.Debug("value written to entries",
		slog.String("key", key),
		slog.Time("updated_at", now),
	)
	return nil
}

// Read returns all stored rows ordered by key
func (v *Values) Read(ctx context.Context) ([]Value, error) {
	var rows []Value
	err := v.db.SelectContext(ctx, &rows, `SELECT key, value, updated_at FROM entries ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get values: %w", err)
	}

	slog.Debug("read values",
		slog.Int("count", len(rows)),
	)
	return rows, nil
}

// Close closes the underlying database
func (v *Values) Close() error {
	return v.db.Close()
}
