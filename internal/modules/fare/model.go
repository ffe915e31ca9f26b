// README: Route calculation request/response types and the orchestrator's error taxonomy.
package fare

import (
	"errors"
	"fmt"
	"strings"

	"farecalc/internal/maps"
	"farecalc/internal/modules/history"
	"farecalc/internal/modules/pricing"
)

var (
	ErrMissingAddress   = errors.New("missing address")
	ErrAddressNotFound  = errors.New("address not found")
	ErrRouteNotFound    = errors.New("route not found")
	ErrGeocodingTimeout = errors.New("geocoding timed out")
	ErrRoutingTimeout   = errors.New("routing timed out")
	ErrGeocodingFailed  = errors.New("geocoding failed")
	// ErrSuperseded is returned to a calculation cancelled by a newer one.
	ErrSuperseded = errors.New("calculation superseded by a newer request")
)

type RouteRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	// Session scopes latest-wins cancellation; calls with different sessions never cancel each other.
	Session string `json:"-"`
}

type Quote struct {
	Origin      maps.Place           `json:"origin"`
	Destination maps.Place           `json:"destination"`
	Metrics     pricing.RouteMetrics `json:"metrics"`
	// DirectKm is the straight-line distance between the resolved points.
	DirectKm    float64              `json:"direct_km"`
	Fare        pricing.FareResult   `json:"fare"`
	Settings    pricing.FareProfile  `json:"settings"`
	Profile     string               `json:"profile"`
	Entry       history.Entry        `json:"entry"`
}

type MissingAddressError struct {
	Fields []string
}

func (e *MissingAddressError) Error() string {
	return fmt.Sprintf("missing address: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingAddressError) Is(target error) bool { return target == ErrMissingAddress }

type AddressNotFoundError struct {
	Address string
}

func (e *AddressNotFoundError) Error() string {
	return fmt.Sprintf("address not found: %q", e.Address)
}

func (e *AddressNotFoundError) Is(target error) bool { return target == ErrAddressNotFound }
