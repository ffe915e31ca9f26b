package maps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"farecalc/internal/types"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimClient geocodes through an OpenStreetMap Nominatim instance.
// Requests are rate limited; the public instance allows one per second.
type NominatimClient struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	countryCodes string
	language     string
	limiter      *rate.Limiter
}

type NominatimOptions struct {
	BaseURL      string
	UserAgent    string
	CountryCodes string
	Language     string
	// RequestsPerSecond <= 0 disables the limiter.
	RequestsPerSecond float64
}

func NewNominatimClient(httpClient *http.Client, opts NominatimOptions) *NominatimClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultNominatimURL
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &NominatimClient{
		httpClient:   httpClient,
		baseURL:      base,
		userAgent:    opts.UserAgent,
		countryCodes: opts.CountryCodes,
		language:     opts.Language,
		limiter:      rate.NewLimiter(limit, 1),
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (c *NominatimClient) Geocode(ctx context.Context, address string) ([]Place, error) {
	if strings.TrimSpace(address) == "" {
		return nil, errors.New("geocode: empty query")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// the queued wait would outlast the deadline
		return nil, fmt.Errorf("geocode: rate limit: %w", context.DeadlineExceeded)
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "jsonv2")
	params.Set("limit", "5")
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}
	if c.language != "" {
		params.Set("accept-language", c.language)
	}

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var raw []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		lat, err1 := strconv.ParseFloat(r.Lat, 64)
		lng, err2 := strconv.ParseFloat(r.Lon, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		places = append(places, Place{
			Point:       types.Point{Lat: lat, Lng: lng},
			DisplayName: r.DisplayName,
		})
	}
	return places, nil
}
