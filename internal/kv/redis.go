// README: Redis-backed blob store; CAS implemented with WATCH/MULTI.
package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	redis *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{redis: client}
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap("get", key, err)
	}
	return val, true, nil
}

func (s *Redis) Put(ctx context.Context, key string, value []byte) error {
	return wrap("put", key, s.redis.Set(ctx, key, value, 0).Err())
}

func (s *Redis) Delete(ctx context.Context, key string) error {
	return wrap("delete", key, s.redis.Del(ctx, key).Err())
}

func (s *Redis) CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error) {
	swapped := false
	err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		found := true
		if err == redis.Nil {
			found = false
		} else if err != nil {
			return err
		}
		if !sameBlob(cur, found, prev) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		if err == nil {
			swapped = true
		}
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, wrap("cas", key, err)
	}
	return swapped, nil
}

func (s *Redis) Close() error {
	return s.redis.Close()
}
