// README: Ride history entry recorded after every successful calculation.
package history

import "time"

type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DistanceKm  float64   `json:"distance_km"`
	DurationMin float64   `json:"duration_min"`
	Total       float64   `json:"total"`
	Profile     string    `json:"profile"`
}
