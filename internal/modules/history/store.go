// README: History store: the whole list lives in one blob, newest first.
package history

import (
	"context"
	"encoding/json"
	"fmt"

	"farecalc/internal/kv"
)

type Store struct {
	kv  kv.Store
	key string
}

func NewStore(store kv.Store, keys kv.Keys) *Store {
	return &Store{kv: store, key: keys.History}
}

func (s *Store) List(ctx context.Context) ([]Entry, error) {
	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	return s.decode(raw, found)
}

// Prepend puts e at the head and trims the tail to max entries (0 = no cap).
func (s *Store) Prepend(ctx context.Context, e Entry, max int) error {
	return kv.Update(ctx, s.kv, s.key, func(cur []byte, found bool) ([]byte, error) {
		entries, err := s.decode(cur, found)
		if err != nil {
			return nil, err
		}
		entries = append([]Entry{e}, entries...)
		if max > 0 && len(entries) > max {
			entries = entries[:max]
		}
		return kv.Marshal(s.key, entries)
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}

func (s *Store) decode(raw []byte, found bool) ([]Entry, error) {
	entries := []Entry{}
	if !found || len(raw) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", kv.ErrPersistence, s.key, err)
	}
	return entries, nil
}
