package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farecalc/internal/config"
	"farecalc/internal/kv"
	"farecalc/internal/maps"
	"farecalc/internal/messages"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/history"
	"farecalc/internal/modules/pricing"
	"farecalc/internal/service"
	"farecalc/internal/types"
)

type stubGeocoder map[string][]maps.Place

func (s stubGeocoder) Geocode(_ context.Context, address string) ([]maps.Place, error) {
	return s[address], nil
}

type stubRouter struct{}

func (stubRouter) Route(context.Context, types.Point, types.Point) (maps.RouteSummary, error) {
	return maps.RouteSummary{TotalDistanceMeters: 2000, TotalTimeSeconds: 300}, nil
}

func newTestEngine(t *testing.T) *service.Engine {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	geo := stubGeocoder{
		"Rua Augusta": {{Point: types.Point{Lat: -23.55, Lng: -46.65}, DisplayName: "Rua Augusta, São Paulo"}},
		"Praça da Sé": {{Point: types.Point{Lat: -23.55, Lng: -46.63}, DisplayName: "Praça da Sé, São Paulo"}},
	}
	return service.Assemble(kv.NewMemory(), nil, geo, stubRouter{}, cfg, nil, nil)
}

func runCmd(t *testing.T, eng *service.Engine, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), eng, "Cálculo de Trajeto", args, &out)
	return out.String(), err
}

func TestCalc_FloorApplied(t *testing.T) {
	eng := newTestEngine(t)

	out, err := runCmd(t, eng, "calc", "-from", "Rua Augusta", "-to", "Praça da Sé")
	require.NoError(t, err)
	// 5 + 2*2 + 5*0.5 = 11.5 >= 10
	assert.Contains(t, out, "11.50")
	assert.NotContains(t, out, "minimum fare applied")

	out, err = runCmd(t, eng, "calc", "-from", "Rua Augusta", "-to", "Praça da Sé", "-profile", "premium")
	require.NoError(t, err)
	// 10 + 2*3 + 5*1 = 21 >= 20
	assert.Contains(t, out, "21.00")

	out, err = runCmd(t, eng, "calc", "-from", "Rua Augusta", "-to", "Praça da Sé", "-base", "1", "-min", "50", "-km", "1", "-minute", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "minimum fare applied")
	assert.Contains(t, out, "50.00")

	entries, err := eng.History.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCalc_AddressNotFound(t *testing.T) {
	eng := newTestEngine(t)

	_, err := runCmd(t, eng, "calc", "-from", "Rua Augusta", "-to", "Lugar Nenhum")
	require.ErrorIs(t, err, fare.ErrAddressNotFound)
	assert.Equal(t, messages.AddressNotFound, messages.ForError(err))

	entries, err := eng.History.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConfigSelectAndProfiles(t *testing.T) {
	eng := newTestEngine(t)

	out, err := runCmd(t, eng, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "active profile: padrao")

	_, err = runCmd(t, eng, "config", "-base", "abc", "-min", "1", "-km", "1", "-minute", "1")
	assert.ErrorIs(t, err, pricing.ErrInvalidSettings)

	out, err = runCmd(t, eng, "config", "-base", "6", "-min", "12", "-km", "2.2", "-minute", "0.6")
	require.NoError(t, err)
	assert.Contains(t, out, "Configurações salvas com sucesso!")

	out, err = runCmd(t, eng, "select", "premium")
	require.NoError(t, err)
	assert.Contains(t, out, "active profile: premium")

	_, err = runCmd(t, eng, "profiles", "-save", "noturno", "-base", "7", "-min", "15", "-km", "2.5", "-minute", "0.7")
	require.NoError(t, err)
	out, err = runCmd(t, eng, "profiles")
	require.NoError(t, err)
	assert.Contains(t, out, "noturno")
	assert.Contains(t, out, "padrao")

	_, err = runCmd(t, eng, "select")
	assert.ErrorIs(t, err, errUsage)
	_, err = runCmd(t, eng, "bogus")
	assert.ErrorIs(t, err, errUsage)
}

func TestHistoryAndClear(t *testing.T) {
	eng := newTestEngine(t)

	out, err := runCmd(t, eng, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "no rides recorded")

	_, err = runCmd(t, eng, "calc", "-from", "Rua Augusta", "-to", "Praça da Sé")
	require.NoError(t, err)

	out, err = runCmd(t, eng, "history", "-json")
	require.NoError(t, err)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Rua Augusta", entries[0].Origin)

	_, err = runCmd(t, eng, "clear")
	require.NoError(t, err)
	_, err = runCmd(t, eng, "clear")
	require.NoError(t, err)

	out, err = runCmd(t, eng, "history", "-json")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}
