package geocoding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	place *Place
	err   error
	calls int
}

func (r *countingResolver) Resolve(ctx context.Context, lat, lng float64) (*Place, error) {
	r.calls++
	return r.place, r.err
}

func newTestCache(t *testing.T, inner PlaceResolver) (*CachedResolver, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedResolver(inner, client, 0), mr
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey(55.75581, 37.61730), CacheKey(55.75599, 37.61749))
	assert.NotEqual(t, CacheKey(55.755, 37.617), CacheKey(55.757, 37.617))
	assert.Equal(t, CacheKey(0, 0), CacheKey(-0.0001, 0.0001))
}

func TestCachedResolver_CachesSuccess(t *testing.T) {
	inner := &countingResolver{place: &Place{Name: "Springfield", Latitude: 1, Longitude: 2}}
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	first, err := cache.Resolve(ctx, 10.0001, 20.0001)
	require.NoError(t, err)
	second, err := cache.Resolve(ctx, 10.0002, 20.0002)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(CacheKey(10, 20)))
	assert.InDelta(t, DefaultCacheTTL.Seconds(), mr.TTL(CacheKey(10, 20)).Seconds(), 1)

	mr.FastForward(DefaultCacheTTL + time.Second)
	_, err = cache.Resolve(ctx, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_DoesNotCacheFailures(t *testing.T) {
	inner := &countingResolver{err: ErrNoAddress}
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		place, err := cache.Resolve(ctx, 1, 1)
		assert.Nil(t, place)
		assert.True(t, errors.Is(err, ErrNoAddress))
	}
	assert.Equal(t, 2, inner.calls)
	assert.False(t, mr.Exists(CacheKey(1, 1)))
}

func TestCachedResolver_RedisDownStillResolves(t *testing.T) {
	inner := &countingResolver{place: &Place{Name: "X"}}
	cache, mr := newTestCache(t, inner)
	mr.Close()

	place, err := cache.Resolve(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "X", place.Name)
}
