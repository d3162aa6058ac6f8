// ABOUTME: SQLite key/value backend for the document store.
// ABOUTME: One documents table keyed by full document path.

package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL
);
`

type sqliteBackend struct {
	db *sql.DB
}

// OpenSQLite opens a sqlite-backed DB at path, creating the file and its
// directory as needed.
func OpenSQLite(path string, opts ...Option) (*DB, error) {
	backend, err := NewSQLiteBackend(path)
	if err != nil {
		return nil, err
	}
	return New(backend, opts...), nil
}

func NewSQLiteBackend(path string) (Backend, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps writes ordered and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &sqliteBackend{db: db}, nil
}

func (s *sqliteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return val, err
}

func (s *sqliteBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func (s *sqliteBackend) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	return err
}

func (s *sqliteBackend) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM documents WHERE key >= ? AND key < ? ORDER BY key`,
		prefix, prefixEnd(prefix))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *sqliteBackend) Close() error {
	return s.db.Close()
}

// prefixEnd returns the smallest key greater than every key starting with
// prefix. Paths are plain text, so the last byte is never 0xff.
func prefixEnd(prefix string) string {
	if prefix == "" {
		return "\xff"
	}
	end := []byte(prefix)
	end[len(end)-1]++
	return string(end)
}
