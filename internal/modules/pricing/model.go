// README: Tariff parameters, route metrics and fare results.
package pricing

import "errors"

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrComputation     = errors.New("fare computation on non-finite input")
)

// FareProfile is one set of tariff parameters.
type FareProfile struct {
	BaseFare   float64 `json:"base_fare" yaml:"base_fare"`
	MinFare    float64 `json:"min_fare" yaml:"min_fare"`
	CostPerKm  float64 `json:"cost_per_km" yaml:"cost_per_km"`
	CostPerMin float64 `json:"cost_per_min" yaml:"cost_per_min"`
}

// SettingsInput is the raw, unparsed form of a FareProfile as typed by a user.
type SettingsInput struct {
	BaseFare   string `json:"base_fare"`
	MinFare    string `json:"min_fare"`
	CostPerKm  string `json:"cost_per_km"`
	CostPerMin string `json:"cost_per_min"`
}

// RouteMetrics holds full-precision route distance and duration.
type RouteMetrics struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// MetricsFromRoute converts a router's meters and seconds.
func MetricsFromRoute(distanceMeters, durationSeconds float64) RouteMetrics {
	return RouteMetrics{
		DistanceKm:  distanceMeters / 1000,
		DurationMin: durationSeconds / 60,
	}
}

// Rounded returns the metrics rounded for display. Fare math uses the unrounded values.
func (m RouteMetrics) Rounded() RouteMetrics {
	return RouteMetrics{DistanceKm: Round2(m.DistanceKm), DurationMin: Round2(m.DurationMin)}
}

type Breakdown struct {
	Base         float64 `json:"base"`
	Distance     float64 `json:"distance"`
	Time         float64 `json:"time"`
	FloorApplied bool    `json:"floor_applied"`
}

type FareResult struct {
	Total     float64   `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}
