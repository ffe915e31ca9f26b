// README: Geocoding and routing collaborators behind the fare engine.
package maps

import (
	"context"
	"errors"

	"farecalc/internal/types"
)

// ErrNoRoute is returned when the routing service finds no path between the points.
var ErrNoRoute = errors.New("no route found")

// Place is one geocoding candidate.
type Place struct {
	Point       types.Point `json:"point"`
	DisplayName string      `json:"display_name"`
}

// RouteSummary is the raw output of a routing service.
type RouteSummary struct {
	TotalDistanceMeters float64 `json:"total_distance_meters"`
	TotalTimeSeconds    float64 `json:"total_time_seconds"`
}

// Geocoder resolves free text into zero or more candidates, best first.
type Geocoder interface {
	Geocode(ctx context.Context, address string) ([]Place, error)
}

// Router resolves two points into a travel summary.
type Router interface {
	Route(ctx context.Context, from, to types.Point) (RouteSummary, error)
}
