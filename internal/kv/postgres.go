// README: Blob store backed by PostgreSQL (single kv_blobs table).
package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS kv_blobs (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the kv_blobs table when missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, postgresSchema)
	return wrap("schema", "kv_blobs", err)
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_blobs WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return v, true, nil
}

func (s *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO kv_blobs (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	return wrap("put", key, err)
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM kv_blobs WHERE key = $1`, key)
	return wrap("delete", key, err)
}

func (s *Postgres) CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error) {
	if prev == nil {
		tag, err := s.db.Exec(ctx, `
            INSERT INTO kv_blobs (key, value, updated_at)
            VALUES ($1, $2, NOW())
            ON CONFLICT (key) DO NOTHING`,
			key, next,
		)
		if err != nil {
			return false, wrap("cas", key, err)
		}
		return tag.RowsAffected() == 1, nil
	}
	tag, err := s.db.Exec(ctx, `
        UPDATE kv_blobs
        SET value = $1, updated_at = NOW()
        WHERE key = $2 AND value = $3`,
		next, key, prev,
	)
	if err != nil {
		return false, wrap("cas", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Postgres) Close() error {
	s.db.Close()
	return nil
}
