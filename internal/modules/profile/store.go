// README: Profile store: typed access to the settings and profiles blobs.
package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"farecalc/internal/kv"
	"farecalc/internal/modules/pricing"
)

type Store struct {
	kv   kv.Store
	keys kv.Keys
}

func NewStore(store kv.Store, keys kv.Keys) *Store {
	return &Store{kv: store, keys: keys}
}

func (s *Store) GetSettings(ctx context.Context) (Settings, bool, error) {
	raw, found, err := s.kv.Get(ctx, s.keys.Settings)
	if err != nil || !found {
		return Settings{}, false, err
	}
	var st Settings
	if err := json.Unmarshal(raw, &st); err != nil {
		return Settings{}, false, fmt.Errorf("%w: decode %s: %v", kv.ErrPersistence, s.keys.Settings, err)
	}
	return st, true, nil
}

func (s *Store) PutSettings(ctx context.Context, st Settings) error {
	raw, err := kv.Marshal(s.keys.Settings, st)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, s.keys.Settings, raw)
}

// GetOverrides returns the persisted named profiles; an empty map when none were saved.
func (s *Store) GetOverrides(ctx context.Context) (map[string]pricing.FareProfile, error) {
	raw, found, err := s.kv.Get(ctx, s.keys.Profiles)
	if err != nil {
		return nil, err
	}
	return decodeOverrides(s.keys.Profiles, raw, found)
}

// PutOverride stores one named profile, preserving concurrent writes to other names.
func (s *Store) PutOverride(ctx context.Context, name string, p pricing.FareProfile) error {
	return kv.Update(ctx, s.kv, s.keys.Profiles, func(cur []byte, found bool) ([]byte, error) {
		overrides, err := decodeOverrides(s.keys.Profiles, cur, found)
		if err != nil {
			return nil, err
		}
		overrides[name] = p
		return kv.Marshal(s.keys.Profiles, overrides)
	})
}

func decodeOverrides(key string, raw []byte, found bool) (map[string]pricing.FareProfile, error) {
	out := map[string]pricing.FareProfile{}
	if !found || len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", kv.ErrPersistence, key, err)
	}
	return out, nil
}
