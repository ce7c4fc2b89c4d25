package travel

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tripplanner/internal/external"
	"tripplanner/internal/types"
)

// PlacesService runs the hotel and restaurant searches for a destination in
// parallel and stores the combined result.
type PlacesService struct {
	store    PlaceStore
	search   external.SearchClient
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewPlacesService creates a PlacesService. cacheTTL bounds how old a stored
// search may be and still be served; zero disables the cache.
func NewPlacesService(store PlaceStore, search external.SearchClient, cacheTTL time.Duration, logger *slog.Logger) *PlacesService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlacesService{
		store:    store,
		search:   search,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service's time source. Tests only.
func (s *PlacesService) WithClock(now func() time.Time) *PlacesService {
	s.now = now
	return s
}

// Search returns hotels and restaurants for the destination. The two
// provider queries run concurrently; either failing fails the whole search.
func (s *PlacesService) Search(ctx context.Context, req *types.PlacesSearchRequest) (*types.PlacesRecord, error) {
	now := s.now().UTC()

	if s.cacheTTL > 0 {
		cached, err := s.store.FindRecent(ctx, req.Destination, req.Theme, now.Add(-s.cacheTTL))
		if err != nil {
			return nil, err
		}
		if cached != nil {
			s.logger.InfoContext(ctx, "serving cached place search",
				slog.String("destination", req.Destination),
				slog.String("record_id", cached.ID),
			)
			cached.Cached = true
			return cached, nil
		}
	}

	var result types.PlacesResult
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hotels, err := s.search.SearchPlaces(gctx, hotelQuery(req), req.Destination, "hotel")
		if err != nil {
			return err
		}
		result.Hotels = hotels
		return nil
	})
	g.Go(func() error {
		restaurants, err := s.search.SearchPlaces(gctx, restaurantQuery(req), req.Destination, "restaurant")
		if err != nil {
			return err
		}
		result.Restaurants = restaurants
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.store.Save(ctx, req, &result, now)
}
