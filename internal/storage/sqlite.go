package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLite keeps save slots in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path. The schema must already exist
// (see RunMigrations).
func OpenSQLite(path string) (*SQLite, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening save db: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of the picture.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging save db: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) ReadSlot(ctx context.Context, slot string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM save_slots WHERE slot = ?`, slot).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", slot, err)
	}
	return []byte(data), nil
}

func (s *SQLite) WriteSlot(ctx context.Context, slot string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO save_slots (slot, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, slot, string(data))
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", slot, err)
	}
	return nil
}

func (s *SQLite) DeleteSlot(ctx context.Context, slot string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM save_slots WHERE slot = ?`, slot); err != nil {
		return fmt.Errorf("deleting slot %s: %w", slot, err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir %s: %w", dir, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
