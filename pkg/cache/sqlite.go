package cache

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteCache stores entries in a single SQLite table. Expired rows are
// deleted when read.
type SQLiteCache struct {
	db    *sql.DB
	clock Clock
}

// NewSQLiteCache opens (or creates) the database at path. Use ":memory:"
// for a throwaway database.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, backendError(BackendSQLite, "open", err)
	}
	// One writer at a time; also keeps ":memory:" on a single connection.
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, backendError(BackendSQLite, "open", err)
	}
	return c, nil
}

// WithClock sets the clock used for expiry checks.
func (c *SQLiteCache) WithClock(clock Clock) *SQLiteCache {
	c.clock = clock
	return c
}

func (c *SQLiteCache) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS cache_entries (
        key        TEXT PRIMARY KEY,
        data       BLOB NOT NULL,
        expires_at INTEGER
    );

    CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
    `
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Get retrieves a value.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		data      []byte
		expiresAt sql.NullInt64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT data, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, backendError(BackendSQLite, "get", err)
	}

	if expiresAt.Valid && c.clock.Now().UnixNano() >= expiresAt.Int64 {
		_, _ = c.db.ExecContext(ctx,
			`DELETE FROM cache_entries WHERE key = ? AND expires_at = ?`, key, expiresAt.Int64)
		return nil, false, nil
	}
	return data, true, nil
}

// Set inserts or replaces a value.
func (c *SQLiteCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: c.clock.Now().Add(ttl).UnixNano(), Valid: true}
	}
	_, err := c.db.ExecContext(ctx, `
        INSERT INTO cache_entries (key, data, expires_at) VALUES (?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, data, expiresAt)
	if err != nil {
		return backendError(BackendSQLite, "set", err)
	}
	return nil
}

// Delete removes a value.
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return backendError(BackendSQLite, "delete", err)
	}
	return nil
}

// Clear deletes every row.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return backendError(BackendSQLite, "clear", err)
	}
	return nil
}

// Purge deletes expired rows and returns how many were removed.
func (c *SQLiteCache) Purge(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		c.clock.Now().UnixNano())
	if err != nil {
		return 0, backendError(BackendSQLite, "purge", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Name returns "sqlite".
func (c *SQLiteCache) Name() string { return BackendSQLite }

var (
	_ Cache   = (*SQLiteCache)(nil)
	_ Clearer = (*SQLiteCache)(nil)
	_ Purger  = (*SQLiteCache)(nil)
)
