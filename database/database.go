// Package database implements an optional on-disk fingerprint cache. The
// cache is an accelerator only: every read or write failure degrades to
// recomputing the fingerprint, never to a failed run.
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"imagededup/types"
)

// FingerprintCache persists computed fingerprints keyed by path, so files
// whose size and modification time are unchanged skip decode and hashing on
// later runs.
type FingerprintCache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at dbPath.
func Open(dbPath string) (*FingerprintCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS fingerprints (
		path TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		modified_at TEXT NOT NULL,
		fingerprint INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fingerprint ON fingerprints(fingerprint);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &FingerprintCache{db: db}, nil
}

// Close releases the underlying database connection.
func (c *FingerprintCache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached fingerprint for path if the stored size and
// modification time still match the file. A stale or missing row is a miss,
// not an error.
func (c *FingerprintCache) Lookup(path string, size int64, modified time.Time) (types.Fingerprint, bool, error) {
	var (
		storedSize    int64
		storedModTime string
		fingerprint   int64
	)
	row := c.db.QueryRow(
		"SELECT size, modified_at, fingerprint FROM fingerprints WHERE path = ?", path)
	err := row.Scan(&storedSize, &storedModTime, &fingerprint)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache lookup for %s: %w", path, err)
	}

	if storedSize != size || storedModTime != modified.UTC().Format(time.RFC3339Nano) {
		return 0, false, nil
	}
	return types.Fingerprint(uint64(fingerprint)), true, nil
}

// Store records the fingerprint for path, replacing any previous row.
func (c *FingerprintCache) Store(path string, size int64, modified time.Time, fp types.Fingerprint) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO fingerprints (path, size, modified_at, fingerprint) VALUES (?, ?, ?, ?)",
		path, size, modified.UTC().Format(time.RFC3339Nano), int64(uint64(fp)))
	if err != nil {
		return fmt.Errorf("cache store for %s: %w", path, err)
	}
	return nil
}
