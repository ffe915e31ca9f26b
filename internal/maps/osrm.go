package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"farecalc/internal/types"
)

const defaultOSRMURL = "https://router.project-osrm.org"

// OSRMClient asks an OSRM server for driving routes.
type OSRMClient struct {
	httpClient *http.Client
	baseURL    string
	profile    string
}

func NewOSRMClient(httpClient *http.Client, baseURL, profile string) *OSRMClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultOSRMURL
	}
	if profile == "" {
		profile = "driving"
	}
	return &OSRMClient{httpClient: httpClient, baseURL: baseURL, profile: profile}
}

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

func (c *OSRMClient) Route(ctx context.Context, from, to types.Point) (RouteSummary, error) {
	// OSRM takes lng,lat pairs
	endpoint := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f?overview=false&alternatives=false&steps=false",
		c.baseURL, c.profile, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RouteSummary{}, fmt.Errorf("route: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RouteSummary{}, fmt.Errorf("route: do request: %w", err)
	}
	defer resp.Body.Close()

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return RouteSummary{}, fmt.Errorf("route: decode response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case body.Code == "NoRoute" || body.Code == "NoSegment":
		return RouteSummary{}, ErrNoRoute
	case body.Code != "Ok":
		return RouteSummary{}, fmt.Errorf("route: osrm %s: %s", body.Code, body.Message)
	case len(body.Routes) == 0:
		return RouteSummary{}, ErrNoRoute
	}

	return RouteSummary{
		TotalDistanceMeters: body.Routes[0].Distance,
		TotalTimeSeconds:    body.Routes[0].Duration,
	}, nil
}
