// Package cache provides the response cache used by read-heavy endpoints.
//
// Entries are registered under tags. Writes invalidate a tag and every key
// stored under it is dropped, so callers never need wildcard deletes.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/klm-wiki-api/internal/config"
	"github.com/redis/go-redis/v9"
)

// Store is a byte cache with TTLs and tag based invalidation
type Store interface {
	// Get returns the value and true on a hit
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
	Invalidate(ctx context.Context, tags ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Purger is implemented by stores that need expired entries swept out
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// New builds the store selected in cfg. client may be nil unless the redis backend is chosen.
func New(cfg config.CacheConfig, client *redis.Client) (Store, error) {
	switch cfg.Backend {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		return NewRedisStore(client, cfg.Prefix), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key joins parts into a cache key such as "articles:list:1:10:go"
func Key(parts ...interface{}) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, ":")
}
