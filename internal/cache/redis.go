package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// tag sets outlive the entries they index; stale members are harmless to DEL
const tagTTL = 24 * time.Hour

// RedisStore keeps entries as plain keys and each tag as a set of keys
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps client. prefix namespaces every key, e.g. "klmwiki:".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string    { return s.prefix + k }
func (s *RedisStore) tagKey(t string) string { return s.prefix + "tag:" + t }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	k := s.key(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, k, value, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, s.tagKey(tag), k)
			pipe.Expire(ctx, s.tagKey(tag), tagTTL)
		}
		return nil
	})
	return err
}

// Invalidate deletes every key indexed under tags, then the tag sets themselves
func (s *RedisStore) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tk := s.tagKey(tag)
		keys, err := s.client.SMembers(ctx, tk).Result()
		if err != nil {
			return err
		}
		if err := s.client.Del(ctx, append(keys, tk)...).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
