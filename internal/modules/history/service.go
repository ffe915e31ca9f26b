// README: History manager: record, list and clear past fare calculations.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"farecalc/internal/modules/pricing"
)

type Service struct {
	store      *Store
	maxEntries int
	now        func() time.Time
	log        *zap.Logger
}

func NewService(store *Store, maxEntries int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, maxEntries: maxEntries, now: time.Now, log: log}
}

// WithClock replaces the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record stores one ride at the head of the history. On error nothing is written.
func (s *Service) Record(ctx context.Context, origin, destination string, m pricing.RouteMetrics, fare pricing.FareResult, profileName string) (Entry, error) {
	rounded := m.Rounded()
	e := Entry{
		ID:          uuid.NewString(),
		Timestamp:   s.now().UTC(),
		Origin:      origin,
		Destination: destination,
		DistanceKm:  rounded.DistanceKm,
		DurationMin: rounded.DurationMin,
		Total:       fare.Total,
		Profile:     profileName,
	}
	if err := s.store.Prepend(ctx, e, s.maxEntries); err != nil {
		return Entry{}, err
	}
	s.log.Debug("history recorded", zap.String("id", e.ID), zap.Float64("total", e.Total))
	return e, nil
}

// List returns entries newest first; never nil.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.store.List(ctx)
}

// Clear removes all history. Clearing an empty history is not an error.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.log.Info("history cleared")
	return nil
}
