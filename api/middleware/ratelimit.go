package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// RateLimitKeyPrefix is the Redis key prefix for rate limit counters
	RateLimitKeyPrefix = "ratelimit:"

	// LocationRateLimit caps location submissions per user and window. Each one
	// costs two upstream geocoding calls.
	LocationRateLimit  = 5
	LocationRateWindow = time.Minute
)

// RateLimiter is a fixed-window counter in Redis
type RateLimiter struct {
	rdb    redis.Cmdable
	name   string
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter; name separates the counters of different routes
func NewRateLimiter(rdb redis.Cmdable, name string, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		name:   name,
		limit:  limit,
		window: window,
	}
}

// Allow counts one request for key and reports whether it fits the window
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	redisKey := fmt.Sprintf("%s%s:%s", RateLimitKeyPrefix, l.name, key)

	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, 0, fmt.Errorf("failed to start rate window: %w", err)
		}
	}

	if count > l.limit {
		ttl, err := l.rdb.TTL(ctx, redisKey).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return false, 0, ttl, nil
	}
	return true, l.limit - count, 0, nil
}

// RateLimit limits requests per authenticated user, or per client address for
// anonymous requests. Redis failures let the request through.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetUserID(r.Context())
			if key == "" {
				key = clientAddress(r)
			}

			allowed, remaining, retryAfter, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.WithFields(log.Fields{
					"limiter": limiter.name,
					"error":   err,
				}).Warn("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiter.limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second).Seconds())))
				writeError(w, http.StatusTooManyRequests, "Too many requests, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
