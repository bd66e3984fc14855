// Package storage provides SlotStore implementations: a durable SQLite-backed
// store and an in-memory one for tests and the default backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteSlotStore persists slots in a single SQLite table, one row per slot.
type SQLiteSlotStore struct {
	db *sql.DB
}

// NewSQLiteSlotStore opens (creating if needed) the database at dbPath and
// runs migrations.
func NewSQLiteSlotStore(dbPath string) (*SQLiteSlotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteSlotStore{db: db}, nil
}

func (s *SQLiteSlotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns the payload stored under key, or (nil, nil) when the slot has
// never been written.
func (s *SQLiteSlotStore) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", key, err)
	}
	return payload, nil
}

// Save upserts the payload under key.
func (s *SQLiteSlotStore) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`,
		key, payload)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Slot saved", "key", key, "bytes", len(payload))
	return nil
}
