// README: Route calculation orchestrator: validate, geocode, route, price and record.
package fare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"farecalc/internal/maps"
	"farecalc/internal/metrics"
	"farecalc/internal/modules/history"
	"farecalc/internal/modules/pricing"
	"farecalc/internal/types"
)

type Options struct {
	GeocodeTimeout time.Duration
	RouteTimeout   time.Duration
}

// Labeler names the profile matching a set of settings.
type Labeler interface {
	NameOf(ctx context.Context, p pricing.FareProfile) (string, error)
}

type Service struct {
	geocoder maps.Geocoder
	router   maps.Router
	profiles Labeler
	history  *history.Service
	opts     Options
	log      *zap.Logger

	mu       sync.Mutex
	gen      uint64
	inflight map[string]flight
}

type flight struct {
	gen    uint64
	cancel context.CancelCauseFunc
}

func NewService(geocoder maps.Geocoder, router maps.Router, profiles Labeler, hist *history.Service, opts Options, log *zap.Logger) *Service {
	if opts.GeocodeTimeout <= 0 {
		opts.GeocodeTimeout = 10 * time.Second
	}
	if opts.RouteTimeout <= 0 {
		opts.RouteTimeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		geocoder: geocoder,
		router:   router,
		profiles: profiles,
		history:  hist,
		opts:     opts,
		log:      log,
		inflight: map[string]flight{},
	}
}

// Calculate runs the whole chain and records the ride only when every step succeeds.
// Starting a new calculation for the same session cancels the one still in flight;
// that one returns ErrSuperseded.
func (s *Service) Calculate(ctx context.Context, req RouteRequest, in pricing.SettingsInput) (Quote, error) {
	q, err := s.calculate(ctx, req, in)
	metrics.FareCalculations.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		s.log.Info("route calculation failed", zap.String("origin", req.Origin), zap.String("destination", req.Destination), zap.Error(err))
		return Quote{}, err
	}
	metrics.FareTotals.Observe(q.Fare.Total)
	s.log.Info("route calculated",
		zap.String("origin", req.Origin),
		zap.String("destination", req.Destination),
		zap.Float64("distance_km", q.Metrics.DistanceKm),
		zap.Float64("duration_min", q.Metrics.DurationMin),
		zap.Float64("total", q.Fare.Total),
	)
	return q, nil
}

func (s *Service) calculate(ctx context.Context, req RouteRequest, in pricing.SettingsInput) (Quote, error) {
	settings, err := pricing.ValidateSettings(in)
	if err != nil {
		return Quote{}, err
	}

	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)
	var missing []string
	if origin == "" {
		missing = append(missing, "origin")
	}
	if destination == "" {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return Quote{}, &MissingAddressError{Fields: missing}
	}

	ctx, gen := s.begin(ctx, req.Session)
	defer s.end(req.Session, gen)

	var from, to maps.Place
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.geocode(gctx, origin)
		from = p
		return err
	})
	g.Go(func() error {
		p, err := s.geocode(gctx, destination)
		to = p
		return err
	})
	if err := g.Wait(); err != nil {
		return Quote{}, superseded(ctx, err)
	}

	summary, err := s.route(ctx, from.Point, to.Point)
	if err != nil {
		return Quote{}, superseded(ctx, err)
	}

	m := pricing.MetricsFromRoute(summary.TotalDistanceMeters, summary.TotalTimeSeconds)
	result, err := pricing.ComputeFare(settings, m)
	if err != nil {
		return Quote{}, err
	}

	label := "custom"
	if s.profiles != nil {
		if label, err = s.profiles.NameOf(ctx, settings); err != nil {
			return Quote{}, superseded(ctx, err)
		}
	}

	entry, err := s.commit(ctx, req.Session, gen, origin, destination, m, result, label)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Origin:      from,
		Destination: to,
		Metrics:     m,
		DirectKm:    pricing.Round2(from.Point.DistanceKm(to.Point)),
		Fare:        result,
		Settings:    settings,
		Profile:     label,
		Entry:       entry,
	}, nil
}

// commit records history only if this calculation is still the latest one.
// Holding the lock keeps a newer call from cancelling it mid-write.
func (s *Service) commit(ctx context.Context, session string, gen uint64, origin, destination string, m pricing.RouteMetrics, result pricing.FareResult, label string) (history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.inflight[session]; !ok || f.gen != gen || context.Cause(ctx) == ErrSuperseded {
		return history.Entry{}, ErrSuperseded
	}
	if err := ctx.Err(); err != nil {
		return history.Entry{}, err
	}
	return s.history.Record(ctx, origin, destination, m, result, label)
}

func (s *Service) begin(parent context.Context, session string) (context.Context, uint64) {
	ctx, cancel := context.WithCancelCause(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.inflight[session]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.gen++
	s.inflight[session] = flight{gen: s.gen, cancel: cancel}
	return ctx, s.gen
}

func (s *Service) end(session string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.inflight[session]; ok && f.gen == gen {
		f.cancel(context.Canceled)
		delete(s.inflight, session)
	}
}

func (s *Service) geocode(ctx context.Context, address string) (maps.Place, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.GeocodeTimeout)
	defer cancel()

	start := time.Now()
	places, err := s.geocoder.Geocode(cctx, address)
	observe("geocode", start, err)
	switch {
	case err == nil && len(places) == 0:
		return maps.Place{}, &AddressNotFoundError{Address: address}
	case err == nil:
		return places[0], nil
	case ctx.Err() != nil:
		return maps.Place{}, context.Cause(ctx)
	case errors.Is(err, context.DeadlineExceeded) || cctx.Err() != nil:
		return maps.Place{}, fmt.Errorf("%w: %q", ErrGeocodingTimeout, address)
	default:
		return maps.Place{}, fmt.Errorf("%w: %q: %v", ErrGeocodingFailed, address, err)
	}
}

func (s *Service) route(ctx context.Context, from, to types.Point) (maps.RouteSummary, error) {
	cctx, cancel := context.WithTimeout(ctx, s.opts.RouteTimeout)
	defer cancel()

	start := time.Now()
	summary, err := s.router.Route(cctx, from, to)
	observe("route", start, err)
	switch {
	case err == nil:
		return summary, nil
	case ctx.Err() != nil:
		return maps.RouteSummary{}, context.Cause(ctx)
	case errors.Is(err, context.DeadlineExceeded) || cctx.Err() != nil:
		return maps.RouteSummary{}, ErrRoutingTimeout
	default:
		return maps.RouteSummary{}, fmt.Errorf("%w: %v", ErrRouteNotFound, err)
	}
}

// superseded replaces err with ErrSuperseded when a newer calculation cancelled ctx.
func superseded(ctx context.Context, err error) error {
	if context.Cause(ctx) == ErrSuperseded {
		return ErrSuperseded
	}
	return err
}

func observe(collaborator string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.CollaboratorLatency.WithLabelValues(collaborator, status).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, pricing.ErrInvalidSettings):
		return "invalid_settings"
	case errors.Is(err, ErrMissingAddress):
		return "missing_address"
	case errors.Is(err, ErrAddressNotFound):
		return "address_not_found"
	case errors.Is(err, ErrRouteNotFound):
		return "route_not_found"
	case errors.Is(err, ErrGeocodingTimeout), errors.Is(err, ErrRoutingTimeout):
		return "timeout"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	default:
		return "error"
	}
}
