// README: Key-value blob store used for settings, profiles and ride history.
package kv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrPersistence wraps every backend failure so callers can match a single kind.
	ErrPersistence = errors.New("persistence error")
	// ErrConflict is returned by Update when the blob kept changing underneath it.
	ErrConflict = errors.New("concurrent update conflict")
)

// Store holds whole blobs under string keys. Writes replace the full value.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// CompareAndSwap stores next only if the current value equals prev.
	// A nil prev means the key must not exist yet.
	CompareAndSwap(ctx context.Context, key string, prev, next []byte) (bool, error)
	Close() error
}

// Keys names the three logical records kept by the engine.
type Keys struct {
	Settings string
	History  string
	Profiles string
}

// NewKeys builds the record keys under a namespace prefix.
func NewKeys(namespace string) Keys {
	if namespace == "" {
		return Keys{Settings: "settings", History: "history", Profiles: "profiles"}
	}
	return Keys{
		Settings: namespace + ":settings",
		History:  namespace + ":history",
		Profiles: namespace + ":profiles",
	}
}

const maxUpdateAttempts = 5

// Update runs a read-modify-write cycle guarded by CompareAndSwap.
// fn receives the current value (nil when absent) and returns the next one.
// If fn fails, nothing is written and its error is returned unchanged.
func Update(ctx context.Context, s Store, key string, fn func(cur []byte, found bool) ([]byte, error)) error {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		cur, found, err := s.Get(ctx, key)
		if err != nil {
			return err
		}
		next, err := fn(cur, found)
		if err != nil {
			return err
		}
		prev := cur
		switch {
		case !found:
			prev = nil
		case prev == nil:
			prev = []byte{}
		}
		ok, err := s.CompareAndSwap(ctx, key, prev, next)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return fmt.Errorf("update %s: %w", key, ErrConflict)
}

// Marshal encodes v as the JSON blob stored under key.
func Marshal(key string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %v", ErrPersistence, key, err)
	}
	return raw, nil
}

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %v", ErrPersistence, op, key, err)
}

func sameBlob(cur []byte, found bool, prev []byte) bool {
	if prev == nil {
		return !found
	}
	return found && bytes.Equal(cur, prev)
}
