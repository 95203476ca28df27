// Package cache implements the durable store for raw API responses and
// derived rankings. Entries are addressed by (namespace, fingerprint)
// and never expire; operators clear namespaces out-of-band.
package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Storage namespaces: one per upstream API plus one for derived
// rankings.
const (
	NamespaceCrossref  = "crossref"
	NamespaceCitations = "citations"
	NamespaceRanks     = "ranks"
)

// Namespaces lists all known storage namespaces.
var Namespaces = []string{NamespaceCrossref, NamespaceCitations, NamespaceRanks}

// Store is a SQLite-backed key-value store. A key maps to at most one
// payload; writing an existing key overwrites it atomically.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			payload BLOB NOT NULL,
			fetched_at TEXT NOT NULL,
			PRIMARY KEY (namespace, key)
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Get retrieves a payload. A miss is a normal outcome, reported through
// the boolean, not an error.
func (s *Store) Get(namespace, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow(
		`SELECT payload FROM entries WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return payload, true, nil
}

// Put stores a payload under (namespace, key), overwriting any previous
// entry for the same key.
func (s *Store) Put(namespace, key string, payload []byte) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO entries (namespace, key, payload, fetched_at) VALUES (?, ?, ?, ?)`,
		namespace, key, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Count returns the number of entries in a namespace.
func (s *Store) Count(namespace string) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM entries WHERE namespace = ?`, namespace).Scan(&count)
	return count, err
}

// Clear removes all entries in a namespace. This is the operator-facing
// invalidation path; the pipeline itself never deletes entries.
func (s *Store) Clear(namespace string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM entries WHERE namespace = ?`, namespace)
	if err != nil {
		return 0, fmt.Errorf("clearing namespace %s: %w", namespace, err)
	}
	return res.RowsAffected()
}
