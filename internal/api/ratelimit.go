package api

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klm-wiki-api/internal/config"
	"github.com/klm-wiki-api/internal/errs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Limiter decides whether a client may issue another request
type Limiter interface {
	// Allow reports whether key is under its ceiling; when not, retryAfter
	// is how long the client should wait
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// NewLimiter returns a Redis fixed window limiter when client is set and an
// in-process token bucket otherwise
func NewLimiter(cfg config.RateLimitConfig, client *redis.Client, prefix string) Limiter {
	if client != nil {
		return &redisLimiter{client: client, prefix: prefix + "ratelimit:", limit: int64(cfg.Requests), window: cfg.Window}
	}
	return newLocalLimiter(cfg.Requests, cfg.Window)
}

// redisLimiter counts requests per key and window with INCR + EXPIRE, so
// every instance behind a balancer shares the ceiling
type redisLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	slot := now.UnixNano() / int64(l.window)
	k := l.prefix + key + ":" + strconv.FormatInt(slot, 10)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return true, 0, err
	}

	if incr.Val() <= l.limit {
		return true, 0, nil
	}
	windowEnd := time.Unix(0, (slot+1)*int64(l.window))
	return false, windowEnd.Sub(now), nil
}

// idleLimiterTTL is how long an unused per-client bucket is kept
const idleLimiterTTL = 10 * time.Minute

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localLimiter keeps one token bucket per key, refilled at requests/window
type localLimiter struct {
	mu        sync.Mutex
	clients   map[string]*localEntry
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func newLocalLimiter(requests int, window time.Duration) *localLimiter {
	return &localLimiter{
		clients:   make(map[string]*localEntry),
		limit:     rate.Limit(float64(requests) / window.Seconds()),
		burst:     requests,
		lastSweep: time.Now(),
	}
}

func (l *localLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.clients[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	if now.Sub(l.lastSweep) > idleLimiterTTL {
		l.sweep(now)
	}
	l.mu.Unlock()

	if entry.limiter.AllowN(now, 1) {
		return true, 0, nil
	}
	retryAfter := time.Duration(float64(time.Second) / float64(l.limit))
	return false, retryAfter, nil
}

// sweep drops idle buckets; callers hold mu
func (l *localLimiter) sweep(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// rateLimitMiddleware applies limiter per client IP. Limiter failures let the
// request through.
func rateLimitMiddleware(limiter Limiter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Msg("Rate limiter unavailable")
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(max(1, int(math.Ceil(retryAfter.Seconds())))))
			abortWithError(c, errs.NewTooManyRequestsError("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
