package profile

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farecalc/internal/kv"
	"farecalc/internal/modules/pricing"
)

func newTestService(t *testing.T) (*Service, kv.Store) {
	t.Helper()
	mem := kv.NewMemory()
	return NewService(NewStore(mem, kv.NewKeys("test")), nil, nil), mem
}

func TestList_DefaultsAndOverrides(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), all)

	_, err = svc.SaveProfile(ctx, NamePremium, pricing.SettingsInput{BaseFare: "12", MinFare: "25", CostPerKm: "3.5", CostPerMin: "1.2"})
	require.NoError(t, err)
	_, err = svc.SaveProfile(ctx, "noturno", pricing.SettingsInput{BaseFare: "7", MinFare: "15", CostPerKm: "2.5", CostPerMin: "0.7"})
	require.NoError(t, err)

	all, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, pricing.FareProfile{BaseFare: 12, MinFare: 25, CostPerKm: 3.5, CostPerMin: 1.2}, all[NamePremium], "persisted override wins")
	assert.Equal(t, Defaults()[NameDefault], all[NameDefault])
	assert.Contains(t, all, "noturno")
}

func TestApply_PremiumPersists(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	st, err := svc.Apply(ctx, NamePremium)
	require.NoError(t, err)
	want := pricing.FareProfile{BaseFare: 10, MinFare: 20, CostPerKm: 3, CostPerMin: 1}
	assert.Equal(t, want, st.FareProfile)

	stored, found, err := svc.Settings(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, NamePremium, stored.Profile)
	assert.Equal(t, want, stored.FareProfile)
}

func TestApply_UnknownLeavesSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	before, err := svc.SaveSettings(ctx, pricing.SettingsInput{BaseFare: "4", MinFare: "8", CostPerKm: "1.5", CostPerMin: "0.3"})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "doesNotExist")
	assert.True(t, errors.Is(err, ErrUnknownProfile), "got %v", err)

	after, _, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSelect_CustomIsPassthrough(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t)

	// nothing saved yet: custom resolves to the default tariff and writes nothing
	p, err := svc.Select(ctx, NameCustom)
	require.NoError(t, err)
	assert.Equal(t, Defaults()[NameDefault], p)
	_, found, _ := mem.Get(ctx, kv.NewKeys("test").Settings)
	assert.False(t, found)

	saved, err := svc.SaveSettings(ctx, pricing.SettingsInput{BaseFare: "6", MinFare: "9", CostPerKm: "2", CostPerMin: "0"})
	require.NoError(t, err)

	p, err = svc.Select(ctx, NameCustom)
	require.NoError(t, err)
	assert.Equal(t, saved.FareProfile, p)

	st, err := svc.Apply(ctx, NameCustom)
	require.NoError(t, err)
	assert.Equal(t, saved, st)
}

func TestSaveSettings_InvalidLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Apply(ctx, NameDefault)
	require.NoError(t, err)
	before, _, _ := svc.Settings(ctx)
	profilesBefore, _ := svc.List(ctx)

	_, err = svc.SaveSettings(ctx, pricing.SettingsInput{BaseFare: "abc", MinFare: "10", CostPerKm: "2", CostPerMin: "0.5"})
	assert.ErrorIs(t, err, pricing.ErrInvalidSettings)

	after, _, _ := svc.Settings(ctx)
	profilesAfter, _ := svc.List(ctx)
	assert.Equal(t, before, after)
	assert.Equal(t, profilesBefore, profilesAfter)
}

func TestSaveProfile_Reserved(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	in := pricing.SettingsInput{BaseFare: "1", MinFare: "1", CostPerKm: "1", CostPerMin: "1"}

	_, err := svc.SaveProfile(ctx, NameCustom, in)
	assert.ErrorIs(t, err, ErrReservedProfile)
	_, err = svc.SaveProfile(ctx, "  ", in)
	assert.ErrorIs(t, err, ErrReservedProfile)
}

func TestNameOf(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	name, err := svc.NameOf(ctx, pricing.FareProfile{BaseFare: 10, MinFare: 20, CostPerKm: 3, CostPerMin: 1})
	require.NoError(t, err)
	assert.Equal(t, NamePremium, name)

	name, err = svc.NameOf(ctx, pricing.FareProfile{BaseFare: 1})
	require.NoError(t, err)
	assert.Equal(t, NameCustom, name)
}

func TestSettings_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService(t)
	require.NoError(t, mem.Put(ctx, kv.NewKeys("test").Settings, []byte("{not json")))

	_, _, err := svc.Settings(ctx)
	assert.ErrorIs(t, err, kv.ErrPersistence)
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
profiles:
  noturno: {base_fare: 7, min_fare: 15, cost_per_km: 2.5, cost_per_min: 0.7}
  premium:
    base_fare: 11
    min_fare: 22
    cost_per_km: 3
    cost_per_min: 1
`), 0o600))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, pricing.FareProfile{BaseFare: 7, MinFare: 15, CostPerKm: 2.5, CostPerMin: 0.7}, cat["noturno"])
	assert.Equal(t, 11.0, cat[NamePremium].BaseFare)
	assert.Equal(t, Defaults()[NameDefault], cat[NameDefault])

	defaults, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), defaults)
}

func TestLoadCatalog_Rejects(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"custom name": "profiles:\n  custom: {base_fare: 1, min_fare: 1, cost_per_km: 1, cost_per_min: 1}\n",
		"nan value":   "profiles:\n  x: {base_fare: .nan, min_fare: 1, cost_per_km: 1, cost_per_min: 1}\n",
		"bad yaml":    "profiles: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := LoadCatalog(path)
			assert.Error(t, err)
		})
	}
	_, err := LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestStore_UnencodableSettings(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store := NewStore(mem, kv.NewKeys("test"))

	err := store.PutSettings(ctx, Settings{Profile: NameCustom, FareProfile: pricing.FareProfile{BaseFare: math.NaN()}})
	assert.ErrorIs(t, err, kv.ErrPersistence)

	err = store.PutOverride(ctx, "broken", pricing.FareProfile{MinFare: math.Inf(-1)})
	assert.ErrorIs(t, err, kv.ErrPersistence)

	overrides, err := store.GetOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, overrides)
}
