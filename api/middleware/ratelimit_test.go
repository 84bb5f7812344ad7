package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRateLimiter(rdb, "location", LocationRateLimit, LocationRateWindow), mr
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t)

	for i := 1; i <= LocationRateLimit; i++ {
		allowed, remaining, _, err := limiter.Allow(ctx, "uid-1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
		assert.Equal(t, int64(LocationRateLimit-i), remaining)
	}

	allowed, _, retryAfter, err := limiter.Allow(ctx, "uid-1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
	assert.LessOrEqual(t, retryAfter, LocationRateWindow)

	allowed, _, _, err = limiter.Allow(ctx, "uid-2")
	require.NoError(t, err)
	assert.True(t, allowed, "counters are per key")

	mr.FastForward(LocationRateWindow)
	allowed, _, _, err = limiter.Allow(ctx, "uid-1")
	require.NoError(t, err)
	assert.True(t, allowed, "a new window starts after expiry")
}

func TestRateLimit_Middleware(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	handler := RateLimit(limiter)(okHandler())

	send := func(uid string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/location", nil)
		req = req.WithContext(WithUserID(req.Context(), uid))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < LocationRateLimit; i++ {
		assert.Equal(t, http.StatusNoContent, send("uid-1").Code)
	}

	rec := send("uid-1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusNoContent, send("uid-2").Code)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	mr.Close()

	rec := httptest.NewRecorder()
	RateLimit(limiter)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/location", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
