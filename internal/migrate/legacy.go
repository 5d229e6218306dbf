// Package migrate imports notes from the legacy single-blob key/value store
// into the one-file-per-note vault. The migration runs at most once per
// vault, gated by a marker file.
package migrate

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// LegacyStore reads blobs from the pre-vault storage backend.
// Consumers depend on this interface rather than the concrete SQLite type
// to facilitate testing with fakes.
type LegacyStore interface {
	// ReadBlob returns the raw value for key and whether the key exists.
	ReadBlob(key string) (string, bool, error)
	Close() error
}

// SQLiteStore reads the legacy key/value SQLite database: a single kv table
// mapping string keys to JSON blobs.
type SQLiteStore struct {
	conn *sql.DB
}

var _ LegacyStore = (*SQLiteStore)(nil)

// OpenSQLite opens the legacy database read-only.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", "file:"+dsn+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("migrate: open legacy db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: ping legacy db: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// ReadBlob returns the value stored under key in the kv table.
func (s *SQLiteStore) ReadBlob(key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("migrate: read blob %q: %w", key, err)
	}
	return value, true, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}
