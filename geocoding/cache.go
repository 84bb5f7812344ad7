package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// DefaultCacheTTL keeps resolved places for a week
const DefaultCacheTTL = 7 * 24 * time.Hour

const cacheKeyPrefix = "socialmap:geocode:"

// PlaceResolver is anything that can resolve a coordinate
type PlaceResolver interface {
	Resolve(ctx context.Context, lat, lng float64) (*Place, error)
}

// CachedResolver remembers successful resolutions in Redis. Coordinates are rounded
// to three decimals (about 100 m) so nearby submissions share an entry. Failures are
// never cached, and a Redis outage only costs the cache.
type CachedResolver struct {
	inner  PlaceResolver
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCachedResolver wraps inner with a Redis cache
func NewCachedResolver(inner PlaceResolver, client redis.UniversalClient, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{inner: inner, client: client, ttl: ttl}
}

// CacheKey returns the Redis key for a coordinate
func CacheKey(lat, lng float64) string {
	return fmt.Sprintf("%s%.3f:%.3f", cacheKeyPrefix, round3(lat), round3(lng))
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // fold -0 into 0
	}
	return r
}

// Resolve returns a cached place or resolves and caches it
func (c *CachedResolver) Resolve(ctx context.Context, lat, lng float64) (*Place, error) {
	key := CacheKey(lat, lng)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var place Place
		if jsonErr := json.Unmarshal(data, &place); jsonErr == nil {
			return &place, nil
		}
		log.WithField("key", key).Warn("Dropping undecodable geocode cache entry")
	case !errors.Is(err, redis.Nil):
		log.WithFields(log.Fields{
			"key":   key,
			"error": err,
		}).Warn("Geocode cache read failed")
	}

	place, err := c.inner.Resolve(ctx, lat, lng)
	if err != nil || place == nil {
		return place, err
	}

	if payload, err := json.Marshal(place); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.WithFields(log.Fields{
				"key":   key,
				"error": err,
			}).Warn("Geocode cache write failed")
		}
	}

	return place, nil
}
