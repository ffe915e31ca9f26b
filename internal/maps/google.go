package maps

import (
	"context"
	"fmt"
	"strings"

	gmaps "googlemaps.github.io/maps"

	"farecalc/internal/types"
)

// GoogleService geocodes and routes through the Google Maps web services.
type GoogleService struct {
	client   *gmaps.Client
	language string
	region   string
}

// NewGoogleService creates a GoogleService with the given API key.
// language and region bias results (e.g. "pt-BR", "br") and may be empty.
func NewGoogleService(apiKey, language, region string) (*GoogleService, error) {
	client, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleService{client: client, language: language, region: region}, nil
}

func (s *GoogleService) Geocode(ctx context.Context, address string) ([]Place, error) {
	r := &gmaps.GeocodingRequest{
		Address:  address,
		Language: s.language,
		Region:   s.region,
	}
	results, err := s.client.Geocode(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}

	places := make([]Place, 0, len(results))
	for _, res := range results {
		places = append(places, Place{
			Point:       types.Point{Lat: res.Geometry.Location.Lat, Lng: res.Geometry.Location.Lng},
			DisplayName: res.FormattedAddress,
		})
	}
	return places, nil
}

// Route asks for a driving route and sums every leg of the first one.
func (s *GoogleService) Route(ctx context.Context, from, to types.Point) (RouteSummary, error) {
	r := &gmaps.DirectionsRequest{
		Origin:      from.String(),
		Destination: to.String(),
		Mode:        gmaps.TravelModeDriving,
		Language:    s.language,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		if isZeroResults(err) {
			return RouteSummary{}, ErrNoRoute
		}
		return RouteSummary{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteSummary{}, ErrNoRoute
	}

	var sum RouteSummary
	for _, leg := range routes[0].Legs {
		sum.TotalDistanceMeters += float64(leg.Distance.Meters)
		sum.TotalTimeSeconds += leg.Duration.Seconds()
	}
	return sum, nil
}

// The client reports an empty result set as a status error.
func isZeroResults(err error) bool {
	return strings.Contains(err.Error(), "ZERO_RESULTS")
}
