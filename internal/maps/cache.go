package maps

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const geocodeKeyPrefix = "geocode:"

// CachedGeocoder keeps non-empty geocoding answers in Redis.
// Cache failures are logged and fall through to the wrapped geocoder.
type CachedGeocoder struct {
	next  Geocoder
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedGeocoder(next Geocoder, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedGeocoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedGeocoder{next: next, redis: client, ttl: ttl, log: log}
}

func (c *CachedGeocoder) Geocode(ctx context.Context, address string) ([]Place, error) {
	key := geocodeKey(address)

	val, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var places []Place
		if jerr := json.Unmarshal(val, &places); jerr == nil {
			return places, nil
		}
		c.log.Warn("discarding corrupt geocode cache entry", zap.String("key", key))
	case err != redis.Nil:
		c.log.Warn("geocode cache read failed", zap.Error(err))
	}

	places, err := c.next.Geocode(ctx, address)
	if err != nil || len(places) == 0 {
		return places, err
	}

	if raw, jerr := json.Marshal(places); jerr == nil {
		if serr := c.redis.Set(ctx, key, raw, c.ttl).Err(); serr != nil {
			c.log.Warn("geocode cache write failed", zap.Error(serr))
		}
	}
	return places, nil
}

func geocodeKey(address string) string {
	return geocodeKeyPrefix + strings.ToLower(strings.Join(strings.Fields(address), " "))
}
