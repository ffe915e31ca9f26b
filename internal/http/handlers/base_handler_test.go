package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farecalc/internal/kv"
	"farecalc/internal/messages"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/pricing"
)

func TestSettingsBody_AcceptsStringsAndNumbers(t *testing.T) {
	var b settingsBody
	require.NoError(t, json.Unmarshal([]byte(`{"base_fare":"5","min_fare":10,"cost_per_km":2.5,"cost_per_min":null}`), &b))
	assert.Equal(t, pricing.SettingsInput{BaseFare: "5", MinFare: "10", CostPerKm: "2.5", CostPerMin: ""}, b.input())
}

func TestWriteServiceError_Statuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := messenger{appName: "App"}

	cases := []struct {
		err  error
		code int
	}{
		{&pricing.InvalidSettingsError{Fields: []string{"base_fare"}}, http.StatusBadRequest},
		{&fare.MissingAddressError{Fields: []string{"origin"}}, http.StatusBadRequest},
		{&fare.AddressNotFoundError{Address: "x"}, http.StatusNotFound},
		{fmt.Errorf("%w: boom", fare.ErrRouteNotFound), http.StatusUnprocessableEntity},
		{pricing.ErrComputation, http.StatusUnprocessableEntity},
		{fare.ErrGeocodingTimeout, http.StatusGatewayTimeout},
		{fare.ErrRoutingTimeout, http.StatusGatewayTimeout},
		{fare.ErrGeocodingFailed, http.StatusBadGateway},
		{fare.ErrSuperseded, http.StatusConflict},
		{kv.ErrConflict, http.StatusConflict},
		{fmt.Errorf("%w: disk full", kv.ErrPersistence), http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			m.writeServiceError(c, tc.err)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestMessengerText(t *testing.T) {
	assert.Equal(t, "Endereço não encontrado 🗺️ - Cálculo de Trajeto", messenger{appName: "Cálculo de Trajeto"}.text(messages.AddressNotFound))
	assert.Equal(t, messages.ConfigSaved, messenger{}.text(messages.ConfigSaved))
}

func TestSessionKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/routes/calculate", nil)
	c.Request.RemoteAddr = "192.0.2.10:40000"
	assert.Equal(t, "192.0.2.10", sessionKey(c))

	c.Request.Header.Set(sessionHeader, " tab-1 ")
	assert.Equal(t, "tab-1", sessionKey(c))
}
