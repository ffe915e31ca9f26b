// README: Engine wires storage, map collaborators and the fare modules from config.
package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"farecalc/internal/config"
	"farecalc/internal/infra"
	"farecalc/internal/kv"
	"farecalc/internal/maps"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/history"
	"farecalc/internal/modules/pricing"
	"farecalc/internal/modules/profile"
)

// Engine is the assembled fare & settings engine shared by the API server and the CLI.
type Engine struct {
	Store    kv.Store
	Profiles *profile.Service
	History  *history.Service
	Fare     *fare.Service

	redis *redis.Client
}

// NewEngine builds an engine from cfg. Redis is only dialled when the store
// backend or the geocode cache needs it.
func NewEngine(ctx context.Context, cfg config.Config, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var rdb *redis.Client
	if cfg.Store.Backend == config.BackendRedis || cfg.Maps.CacheTTL > 0 {
		rdb = infra.NewRedis(cfg.Redis.Addr)
	}

	store, err := infra.NewStore(ctx, cfg, rdb)
	if err != nil {
		closeRedis(rdb)
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}

	geocoder, router, err := infra.NewMapServices(cfg.Maps, rdb, log)
	if err != nil {
		_ = store.Close()
		closeRedis(rdb)
		return nil, fmt.Errorf("map services: %w", err)
	}

	catalog, err := profile.LoadCatalog(cfg.Profiles.CatalogFile)
	if err != nil {
		_ = store.Close()
		closeRedis(rdb)
		return nil, err
	}

	return Assemble(store, catalog, geocoder, router, cfg, log, rdb), nil
}

// Assemble builds the modules over already opened collaborators.
func Assemble(store kv.Store, catalog map[string]pricing.FareProfile, geocoder maps.Geocoder, router maps.Router, cfg config.Config, log *zap.Logger, rdb *redis.Client) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	keys := kv.NewKeys(cfg.Store.Namespace)
	profiles := profile.NewService(profile.NewStore(store, keys), catalog, log.Named("profile"))
	hist := history.NewService(history.NewStore(store, keys), cfg.History.MaxEntries, log.Named("history"))
	fareSvc := fare.NewService(geocoder, router, profiles, hist, fare.Options{
		GeocodeTimeout: cfg.Maps.GeocodeTimeout,
		RouteTimeout:   cfg.Maps.RouteTimeout,
	}, log.Named("fare"))

	return &Engine{
		Store:    store,
		Profiles: profiles,
		History:  hist,
		Fare:     fareSvc,
		redis:    rdb,
	}
}

func (e *Engine) Close() error {
	err := e.Store.Close()
	// the Redis store closes the shared client itself
	if _, ok := e.Store.(*kv.Redis); !ok {
		closeRedis(e.redis)
	}
	return err
}

func closeRedis(rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}
