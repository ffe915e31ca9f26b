package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, ProviderOSM, cfg.Maps.Provider)
	assert.Equal(t, 10*time.Second, cfg.Maps.GeocodeTimeout)
	assert.Equal(t, 10*time.Second, cfg.Maps.RouteTimeout)
	assert.Equal(t, 100, cfg.History.MaxEntries)
	assert.Equal(t, "Cálculo de Trajeto", cfg.App.Name)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FARE_STORE", "Redis")
	t.Setenv("FARE_HISTORY_MAX", "0")
	t.Setenv("FARE_ROUTE_TIMEOUT", "3s")
	t.Setenv("FARE_CORS_ORIGINS", "http://localhost:5173, https://fares.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 0, cfg.History.MaxEntries)
	assert.Equal(t, 3*time.Second, cfg.Maps.RouteTimeout)
	assert.Equal(t, []string{"http://localhost:5173", "https://fares.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":    {"FARE_STORE": "etcd"},
		"unknown provider":   {"FARE_MAPS_PROVIDER": "bing"},
		"google without key": {"FARE_MAPS_PROVIDER": "google"},
		"negative history":   {"FARE_HISTORY_MAX": "-1"},
		"zero timeout":       {"FARE_GEOCODE_TIMEOUT": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_GoogleRegion(t *testing.T) {
	t.Setenv("FARE_COUNTRY_CODES", "BR, pt")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "BR, pt", cfg.Maps.CountryCodes)
	assert.Equal(t, "br", cfg.Maps.GoogleRegion)

	t.Setenv("FARE_GOOGLE_REGION", "PT")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "pt", cfg.Maps.GoogleRegion)
}

func TestLoad_TrustedProxies(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.HTTP.TrustedProxies)

	t.Setenv("FARE_TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.HTTP.TrustedProxies)
}
