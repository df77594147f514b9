package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── Fixed-window counters ─────────────────────────────────────────────────────

const rateKeyPrefix = "ratelimit:"

// incrScript increments the window counter and starts its expiry on the first
// hit. Returns {count, pttl}.
var incrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// windowCounter is the in-process fallback used without redis, or when redis
// is unreachable.
type windowCounter struct {
	mu        sync.Mutex
	window    time.Duration
	entries   map[string]*windowEntry
	lastPurge time.Time
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

const purgeInterval = 5 * time.Minute

func newWindowCounter(window time.Duration) *windowCounter {
	return &windowCounter{window: window, entries: make(map[string]*windowEntry), lastPurge: time.Now()}
}

func (w *windowCounter) hit(key string, now time.Time) (int, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Expired entries are dropped lazily so IPs that never return do not
	// accumulate.
	if now.Sub(w.lastPurge) > purgeInterval {
		for k, e := range w.entries {
			if now.After(e.windowEnd) {
				delete(w.entries, k)
			}
		}
		w.lastPurge = now
	}

	e, ok := w.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(w.window)}
		w.entries[key] = e
	}
	e.count++
	return e.count, e.windowEnd
}

// ── Middleware ────────────────────────────────────────────────────────────────

// RateLimiter allows limit requests per client IP and window. Counters live
// in redis so every API instance shares them; rdb may be nil.
func RateLimiter(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	local := newWindowCounter(window)
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()
		now := time.Now()

		count, resetAt, err := redisHit(c.Request.Context(), rdb, key, window, now)
		if err != nil {
			if rdb != nil {
				log.Warn().Err(err).Str("scope", scope).Msg("rate limiter: redis unavailable, using local counter")
			}
			count, resetAt = local.hit(key, now)
		}

		if count > limit {
			retry := int(resetAt.Sub(now).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimiter(rdb, "login", 20, time.Minute)
}

var errNoRedis = errors.New("rate limiter: redis not configured")

func redisHit(ctx context.Context, rdb *redis.Client, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	if rdb == nil {
		return 0, time.Time{}, errNoRedis
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	vals, err := incrScript.Run(ctx, rdb, []string{rateKeyPrefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(vals) < 2 {
		return 0, time.Time{}, errNoRedis
	}
	ttl := time.Duration(vals[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	return int(vals[0]), now.Add(ttl), nil
}
