package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the preference blob in a settings table, one row per
// namespaced key. Other rows in the table belong to other subsystems and
// are never touched.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// OpenSQLiteStore opens (and if needed creates) the settings database at
// path and binds the store to SettingsKey.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open settings database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect settings database: %w", err)
	}

	store := &SQLiteStore{db: db, key: SettingsKey}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("initialize settings schema: %w", err)
		}
	}
	return nil
}

// Get returns the blob stored under the preference key, or (nil, nil)
// when the row does not exist.
func (s *SQLiteStore) Get(ctx context.Context) ([]byte, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreClosed
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences row: %w", err)
	}
	if value == "" {
		return nil, nil
	}
	return []byte(value), nil
}

// Set upserts the blob under the preference key.
func (s *SQLiteStore) Set(ctx context.Context, blob []byte) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.key, string(blob), now)
	if err != nil {
		return fmt.Errorf("write preferences row: %w", err)
	}
	return nil
}
