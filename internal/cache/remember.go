package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Remember serves key from store or computes it with load and stores the
// result under tags. Cache failures are logged and fall through to load.
// The bool result reports a cache hit.
func Remember[T any](
	ctx context.Context,
	store Store,
	log zerolog.Logger,
	key string,
	ttl time.Duration,
	tags []string,
	load func(context.Context) (T, error),
) (T, bool, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	} else if ok {
		var cached T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, true, nil
		}
		log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
	}

	value, err := load(ctx)
	if err != nil {
		return value, false, err
	}

	data, err = json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache encode failed")
		return value, false, nil
	}
	if err := store.Set(ctx, key, data, ttl, tags...); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}

	return value, false, nil
}
