package travel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripplanner/internal/external"
	"tripplanner/internal/types"
)

// dateLayout is the calendar-date format used on the wire and in storage.
const dateLayout = "2006-01-02"

// FlightService searches round-trip flights. Identical route/date searches
// within the cache window are served from the store; flight prices drift, so
// the window is short.
type FlightService struct {
	store    FlightStore
	search   external.SearchClient
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewFlightService creates a FlightService. cacheTTL bounds how old a stored
// search may be and still be served; zero disables the cache.
func NewFlightService(store FlightStore, search external.SearchClient, cacheTTL time.Duration, logger *slog.Logger) *FlightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlightService{
		store:    store,
		search:   search,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service's time source. Tests only.
func (s *FlightService) WithClock(now func() time.Time) *FlightService {
	s.now = now
	return s
}

// Search returns round-trip options for the request, cheapest first.
// Date semantics are validated here; field shapes (IATA codes, date format)
// are the transport layer's concern.
func (s *FlightService) Search(ctx context.Context, req *types.FlightSearchRequest) (*types.FlightSearchRecord, error) {
	now := s.now().UTC()

	if err := validateDateRange(req.DepartureDate, req.ReturnDate, now); err != nil {
		return nil, err
	}

	if s.cacheTTL > 0 {
		cached, err := s.store.FindRecent(ctx, req.Source, req.Destination, req.DepartureDate, req.ReturnDate, now.Add(-s.cacheTTL))
		if err != nil {
			return nil, err
		}
		if cached != nil {
			s.logger.InfoContext(ctx, "serving cached flight search",
				slog.String("route", req.Source+"-"+req.Destination),
				slog.String("record_id", cached.ID),
			)
			cached.Cached = true
			return cached, nil
		}
	}

	options, raw, err := s.search.SearchFlights(ctx, req.Source, req.Destination, req.DepartureDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}

	return s.store.Save(ctx, req, options, raw, now)
}

// validateDateRange enforces that departure is not in the past and the
// return leg is not before departure.
func validateDateRange(departureDate, returnDate string, now time.Time) error {
	dep, err := time.Parse(dateLayout, departureDate)
	if err != nil {
		return types.NewAppError(types.ErrCodeValidationDateRange, "departure_date must be YYYY-MM-DD", err)
	}
	ret, err := time.Parse(dateLayout, returnDate)
	if err != nil {
		return types.NewAppError(types.ErrCodeValidationDateRange, "return_date must be YYYY-MM-DD", err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dep.Before(today) {
		return types.NewAppError(types.ErrCodeValidationDateRange,
			fmt.Sprintf("departure_date %s is in the past", departureDate), nil)
	}
	if ret.Before(dep) {
		return types.NewAppError(types.ErrCodeValidationDateRange,
			fmt.Sprintf("return_date %s is before departure_date %s", returnDate, departureDate), nil)
	}
	return nil
}
