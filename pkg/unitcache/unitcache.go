// Package unitcache keeps segmented units in a SQLite database so that a
// document is only extracted again when its content or the settings that
// shape its units change.
//
// Entries are keyed by a BLAKE3 hash of the document bytes and a settings
// fingerprint supplied by the caller.
package unitcache

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/gardar/ocrdiff/pkg/segment"
	"github.com/gardar/ocrdiff/pkg/unitio"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS units (
	key        TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	data       BLOB NOT NULL
)`

// Cache is an open unit cache
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path
func Open(path string) (*Cache, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open unit cache: %w", err)
	}
	// A single connection keeps writers from contending for the file lock
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create unit cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes document content together with a settings fingerprint
func Key(content, settings []byte) string {
	h := blake3.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write(settings)
	return hex.EncodeToString(h.Sum(nil))
}

// KeyFile reads the document at path and returns its Key
func KeyFile(path string, settings []byte) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Key(data, settings), nil
}

// Get returns the units stored under key. The boolean is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]segment.Unit, bool, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx, `SELECT data FROM units WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query unit cache: %w", err)
	}

	units, err := unitio.Read(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("corrupt unit cache entry %s: %w", key, err)
	}
	return units, true, nil
}

// Put stores units under key, replacing an existing entry. Path is kept
// for reference only.
func (c *Cache) Put(ctx context.Context, key, path string, units []segment.Unit) error {
	var buf bytes.Buffer
	if err := unitio.Write(&buf, units); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO units (key, path, created_at, data) VALUES (?, ?, ?, ?)`,
		key, path, time.Now().Unix(), buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to store units: %w", err)
	}
	return nil
}

// Len returns the number of cached documents
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unit cache entries: %w", err)
	}
	return n, nil
}

// Prune deletes entries stored before the given time and returns how
// many were removed
func (c *Cache) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM units WHERE created_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune unit cache: %w", err)
	}
	return res.RowsAffected()
}
