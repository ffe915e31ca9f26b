package infra

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farecalc/internal/config"
	"farecalc/internal/maps"
)

// NewMapServices returns the geocoding and routing collaborators for cfg.Maps.
// When CacheTTL is set and rdb is non-nil, geocoding answers are cached in Redis.
func NewMapServices(cfg config.MapsConfig, rdb *redis.Client, log *zap.Logger) (maps.Geocoder, maps.Router, error) {
	var (
		geocoder maps.Geocoder
		router   maps.Router
	)
	switch cfg.Provider {
	case config.ProviderGoogle:
		svc, err := maps.NewGoogleService(cfg.GoogleAPIKey, cfg.Language, cfg.GoogleRegion)
		if err != nil {
			return nil, nil, err
		}
		geocoder, router = svc, svc
	default:
		geocoder = maps.NewNominatimClient(nil, maps.NominatimOptions{
			BaseURL:           cfg.NominatimURL,
			UserAgent:         cfg.UserAgent,
			CountryCodes:      cfg.CountryCodes,
			Language:          cfg.Language,
			RequestsPerSecond: cfg.GeocodeRPS,
		})
		router = maps.NewOSRMClient(nil, cfg.OSRMURL, "driving")
	}

	if cfg.CacheTTL > 0 && rdb != nil {
		geocoder = maps.NewCachedGeocoder(geocoder, rdb, cfg.CacheTTL, log)
	}
	return geocoder, router, nil
}
