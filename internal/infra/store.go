// README: Builds the configured key-value backend.
package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"farecalc/internal/config"
	"farecalc/internal/kv"
)

// NewStore opens the blob store selected by cfg.Store.Backend.
// rdb is reused when the Redis backend is selected and may be nil otherwise.
func NewStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (kv.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendRedis:
		if rdb == nil {
			rdb = NewRedis(cfg.Redis.Addr)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return kv.NewRedis(rdb), nil
	case config.BackendPostgres:
		pool, err := NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		s := kv.NewPostgres(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	case config.BackendSQLite:
		return kv.OpenSQLite(ctx, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
