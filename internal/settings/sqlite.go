package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alnah/go-mdlive/internal/yamlutil"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// ErrStoreOpen indicates the database could not be opened or initialized.
var ErrStoreOpen = errors.New("failed to open settings store")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const defaultBusyTimeoutMs = 10_000

const schema = `CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLite is a store backed by a SQLite database file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time

	mu     sync.Mutex
	closed bool
}

// OpenSQLite opens (creating if needed) the settings database at path.
// Parent directories are created. Pass MemoryPath for a throwaway store.
func OpenSQLite(path string) (*SQLite, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("%w: mkdir: %v", ErrStoreOpen, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreOpen, err)
	}
	// Each connection to ":memory:" is a separate database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", defaultBusyTimeoutMs),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrStoreOpen, p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: schema: %v", ErrStoreOpen, err)
	}

	return &SQLite{db: db, now: time.Now}, nil
}

func (s *SQLite) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Get returns the value for key and whether it was present.
func (s *SQLite) Get(ctx context.Context, key string) (any, bool, error) {
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	if s.isClosed() {
		return nil, false, ErrStoreClosed
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading setting %q: %w", key, err)
	}

	v, err := yamlutil.DecodeScalar(raw)
	if err != nil {
		return nil, false, fmt.Errorf("decoding setting %q: %w", key, err)
	}
	return v, true, nil
}

// Set upserts value under key.
func (s *SQLite) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	if s.isClosed() {
		return ErrStoreClosed
	}

	raw, err := yamlutil.EncodeScalar(value)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, raw, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("writing setting %q: %w", key, err)
	}
	return nil
}

// List returns every entry sorted by key.
func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	if s.isClosed() {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("listing settings: %w", err)
		}
		v, err := yamlutil.DecodeScalar(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding setting %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}
	return entries, rows.Err()
}

// Close closes the database. Further calls return ErrStoreClosed.
func (s *SQLite) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.db.Close()
}
