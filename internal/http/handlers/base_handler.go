// README: Base handler utilities (JSON helpers, error mapping, user-facing messages).
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farecalc/internal/kv"
	"farecalc/internal/messages"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/pricing"
	"farecalc/internal/modules/profile"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// messenger suffixes every user-facing message with the application name.
type messenger struct {
	appName string
}

func (m messenger) text(msg string) string {
	return messages.Format(m.appName, msg)
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func (m messenger) writeError(c *gin.Context, status int, code, msg string, fields ...string) {
	writeJSON(c, status, errorResponse{Error: code, Message: m.text(msg), Fields: fields})
}

// writeServiceError maps engine errors onto HTTP statuses.
func (m messenger) writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	var invalid *pricing.InvalidSettingsError
	var missing *fare.MissingAddressError
	var notFound *fare.AddressNotFoundError
	switch {
	case errors.As(err, &invalid):
		m.writeError(c, http.StatusBadRequest, "invalid_settings", messages.ConfigRequired, invalid.Fields...)
	case errors.As(err, &missing):
		m.writeError(c, http.StatusBadRequest, "missing_address", messages.AddressRequired, missing.Fields...)
	case errors.As(err, &notFound):
		m.writeError(c, http.StatusNotFound, "address_not_found", messages.AddressNotFound, notFound.Address)
	case errors.Is(err, profile.ErrUnknownProfile):
		m.writeError(c, http.StatusNotFound, "unknown_profile", messages.UnknownProfile)
	case errors.Is(err, profile.ErrReservedProfile):
		m.writeError(c, http.StatusBadRequest, "reserved_profile", messages.ReservedProfile)
	case errors.Is(err, fare.ErrRouteNotFound):
		m.writeError(c, http.StatusUnprocessableEntity, "route_not_found", messages.RouteNotFound)
	case errors.Is(err, pricing.ErrComputation):
		m.writeError(c, http.StatusUnprocessableEntity, "computation_error", messages.RouteNotFound)
	case errors.Is(err, fare.ErrGeocodingTimeout):
		m.writeError(c, http.StatusGatewayTimeout, "geocoding_timeout", messages.Timeout)
	case errors.Is(err, fare.ErrRoutingTimeout):
		m.writeError(c, http.StatusGatewayTimeout, "routing_timeout", messages.Timeout)
	case errors.Is(err, fare.ErrGeocodingFailed):
		m.writeError(c, http.StatusBadGateway, "geocoding_failed", messages.MapsUnavailable)
	case errors.Is(err, fare.ErrSuperseded):
		m.writeError(c, http.StatusConflict, "superseded", messages.Superseded)
	case errors.Is(err, kv.ErrConflict):
		m.writeError(c, http.StatusConflict, "conflict", messages.Conflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		m.writeError(c, http.StatusServiceUnavailable, "canceled", messages.Timeout)
	default:
		m.writeError(c, http.StatusInternalServerError, "internal", messages.Internal)
	}
}

// settingsBody accepts each tariff field as a JSON string or number.
type settingsBody struct {
	BaseFare   flexString `json:"base_fare"`
	MinFare    flexString `json:"min_fare"`
	CostPerKm  flexString `json:"cost_per_km"`
	CostPerMin flexString `json:"cost_per_min"`
}

func (b settingsBody) input() pricing.SettingsInput {
	return pricing.SettingsInput{
		BaseFare:   string(b.BaseFare),
		MinFare:    string(b.MinFare),
		CostPerKm:  string(b.CostPerKm),
		CostPerMin: string(b.CostPerMin),
	}
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		*f = flexString(data)
	}
	return nil
}
