// README: Profile manager: lists, selects and applies fare profiles and saves settings.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"farecalc/internal/modules/pricing"
)

type Service struct {
	store    *Store
	builtins map[string]pricing.FareProfile
	log      *zap.Logger
}

// NewService uses catalog as the built-in profiles; nil means Defaults().
func NewService(store *Store, catalog map[string]pricing.FareProfile, log *zap.Logger) *Service {
	if catalog == nil {
		catalog = Defaults()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, builtins: catalog, log: log}
}

// List returns built-in profiles merged with persisted overrides; overrides win.
func (s *Service) List(ctx context.Context) (map[string]pricing.FareProfile, error) {
	overrides, err := s.store.GetOverrides(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]pricing.FareProfile, len(s.builtins)+len(overrides))
	for name, p := range s.builtins {
		out[name] = p
	}
	for name, p := range overrides {
		out[name] = p
	}
	return out, nil
}

// Select looks a profile up by name without side effects.
// "custom" returns the active settings instead of a stored profile.
func (s *Service) Select(ctx context.Context, name string) (pricing.FareProfile, error) {
	name = strings.TrimSpace(name)
	if name == NameCustom {
		st, err := s.Active(ctx)
		return st.FareProfile, err
	}
	all, err := s.List(ctx)
	if err != nil {
		return pricing.FareProfile{}, err
	}
	p, ok := all[name]
	if !ok {
		return pricing.FareProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Apply selects a named profile and persists it as the active settings.
// Applying "custom" changes nothing and saves nothing.
func (s *Service) Apply(ctx context.Context, name string) (Settings, error) {
	name = strings.TrimSpace(name)
	if name == NameCustom {
		return s.Active(ctx)
	}
	p, err := s.Select(ctx, name)
	if err != nil {
		return Settings{}, err
	}
	st := Settings{Profile: name, FareProfile: p}
	if err := s.store.PutSettings(ctx, st); err != nil {
		return Settings{}, err
	}
	s.log.Info("profile applied", zap.String("profile", name))
	return st, nil
}

// SaveSettings validates raw input and persists it as the active custom settings.
// Invalid input leaves stored settings untouched.
func (s *Service) SaveSettings(ctx context.Context, in pricing.SettingsInput) (Settings, error) {
	p, err := pricing.ValidateSettings(in)
	if err != nil {
		return Settings{}, err
	}
	st := Settings{Profile: NameCustom, FareProfile: p}
	if err := s.store.PutSettings(ctx, st); err != nil {
		return Settings{}, err
	}
	s.log.Info("settings saved")
	return st, nil
}

// Settings returns the persisted active settings and whether any were saved.
func (s *Service) Settings(ctx context.Context) (Settings, bool, error) {
	return s.store.GetSettings(ctx)
}

// Active returns the persisted settings, or the default profile when nothing was saved yet.
func (s *Service) Active(ctx context.Context) (Settings, error) {
	st, found, err := s.store.GetSettings(ctx)
	if err != nil {
		return Settings{}, err
	}
	if found {
		return st, nil
	}
	def, ok := s.builtins[NameDefault]
	if !ok {
		def = Defaults()[NameDefault]
	}
	return Settings{Profile: NameDefault, FareProfile: def}, nil
}

// SaveProfile validates raw input and stores it under name as an override.
func (s *Service) SaveProfile(ctx context.Context, name string, in pricing.SettingsInput) (pricing.FareProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == NameCustom {
		return pricing.FareProfile{}, fmt.Errorf("%w: %q", ErrReservedProfile, name)
	}
	p, err := pricing.ValidateSettings(in)
	if err != nil {
		return pricing.FareProfile{}, err
	}
	if err := s.store.PutOverride(ctx, name, p); err != nil {
		return pricing.FareProfile{}, err
	}
	s.log.Info("profile saved", zap.String("profile", name))
	return p, nil
}

// NameOf returns the first profile (by name) whose values equal p, or "custom".
func (s *Service) NameOf(ctx context.Context, p pricing.FareProfile) (string, error) {
	all, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if all[name] == p {
			return name, nil
		}
	}
	return NameCustom, nil
}
