package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	value BLOB,
	expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache (expires_at);
CREATE TABLE IF NOT EXISTS cache_tags (
	tag TEXT NOT NULL,
	key TEXT NOT NULL,
	PRIMARY KEY (tag, key)
);
`

// SQLiteStore is an embedded cache for single-node deployments without Redis
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLiteStore opens or creates the cache database at filePath
func NewSQLiteStore(filePath string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", "file:"+filePath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite cache: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Get returns a live entry. Expired rows read as a miss and are left for PurgeExpired.
func (c *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := c.db.GetContext(ctx, &value, "SELECT value FROM cache WHERE key = ? AND expires_at > ?", key, c.now().UnixMilli())
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get item from cache: %w", err)
	}
	return value, true, nil
}

func (c *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	expiresAt := c.now().Add(ttl).UnixMilli()
	if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO cache (key, value, expires_at) VALUES (?, ?, ?)", key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to set item in cache: %w", err)
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO cache_tags (tag, key) VALUES (?, ?)", tag, key); err != nil {
			return fmt.Errorf("failed to tag cache item: %w", err)
		}
	}
	return tx.Commit()
}

func (c *SQLiteStore) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query, args, err := sqlx.In("DELETE FROM cache WHERE key IN (SELECT key FROM cache_tags WHERE tag IN (?))", tags)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}

	query, args, err = sqlx.In("DELETE FROM cache_tags WHERE tag IN (?)", tags)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear cache tags: %w", err)
	}

	return tx.Commit()
}

// PurgeExpired deletes expired entries and their tag rows
func (c *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM cache WHERE expires_at <= ?", c.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "DELETE FROM cache_tags WHERE key NOT IN (SELECT key FROM cache)"); err != nil {
		return 0, fmt.Errorf("failed to purge cache tags: %w", err)
	}
	return res.RowsAffected()
}

func (c *SQLiteStore) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLiteStore) Close() error {
	return c.db.Close()
}
