package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Cache is the persistent zip → coordinate store consulted by the Geocoder.
// Entries never expire and are never invalidated: a zip's coordinates are
// assumed stable.
type Cache interface {
	// Get returns the cached coordinate for zip, or nil on a miss.
	Get(ctx context.Context, zip string) (*LatLng, error)
	// Put stores the coordinate for zip.
	Put(ctx context.Context, zip string, c LatLng) error
}

// RedisCache stores geocode results as JSON under geocode:zip:<zip>.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache returns a Cache backed by rdb.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func cacheKey(zip string) string { return "geocode:zip:" + zip }

// Get returns the cached coordinate for zip, or nil when absent.
func (c *RedisCache) Get(ctx context.Context, zip string) (*LatLng, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(zip)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("geocode cache get: %w", err)
	}

	var coord LatLng
	if err := json.Unmarshal([]byte(raw), &coord); err != nil {
		// A corrupt entry behaves like a miss; the next Put overwrites it.
		return nil, nil
	}
	return &coord, nil
}

// Put stores the coordinate for zip with no expiry.
func (c *RedisCache) Put(ctx context.Context, zip string, coord LatLng) error {
	raw, err := json.Marshal(coord)
	if err != nil {
		return fmt.Errorf("geocode cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(zip), raw, 0).Err(); err != nil {
		return fmt.Errorf("geocode cache set: %w", err)
	}
	return nil
}
