package fallback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// SQLite persists lists in a single-file database, one JSON array per key.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path, creating parent directories.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; concurrent appends queue instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Append(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode fallback entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	list, err := readList(ctx, tx, key)
	if err != nil {
		return err
	}
	if err := writeList(ctx, tx, key, append(list, raw)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) List(ctx context.Context, key string, out interface{}) error {
	list, err := readList(ctx, s.db, key)
	if err != nil {
		return err
	}
	return decodeList(list, out)
}

func (s *SQLite) Replace(ctx context.Context, key string, vs interface{}) error {
	list, err := encodeList(vs)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
		return err
	}
	return writeList(ctx, s.db, key, list)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func readList(ctx context.Context, q querier, key string) ([]json.RawMessage, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", key, err)
	}

	var list []json.RawMessage
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return nil, fmt.Errorf("corrupt value under %q: %w", key, err)
	}
	return list, nil
}

func writeList(ctx context.Context, q querier, key string, list []json.RawMessage) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
