package travel

import (
	"context"
	"log/slog"
	"time"

	"tripplanner/internal/external"
	"tripplanner/internal/types"
)

// ItineraryService generates day-by-day itineraries via the LLM. A user's
// fresh itinerary for the same destination, theme and length is served from
// the store instead of regenerating. When prior research for the destination
// exists, it is folded into the generation prompt.
type ItineraryService struct {
	store    ItineraryStore
	research ResearchStore
	llm      external.LLMClient
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewItineraryService creates an ItineraryService. cacheTTL bounds how old a
// stored itinerary may be and still be served; zero disables the cache.
func NewItineraryService(
	store ItineraryStore,
	research ResearchStore,
	llm external.LLMClient,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *ItineraryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItineraryService{
		store:    store,
		research: research,
		llm:      llm,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service's time source. Tests only.
func (s *ItineraryService) WithClock(now func() time.Time) *ItineraryService {
	s.now = now
	return s
}

// Generate returns an itinerary for the request, regenerating only when the
// user has no fresh one for the same trip shape.
func (s *ItineraryService) Generate(ctx context.Context, req *types.ItineraryRequest) (*types.ItineraryRecord, error) {
	now := s.now().UTC()

	if s.cacheTTL > 0 {
		cached, err := s.store.FindRecent(ctx, req.UserID, req.Destination, req.Theme, req.NumDays, now.Add(-s.cacheTTL))
		if err != nil {
			return nil, err
		}
		if cached != nil {
			s.logger.InfoContext(ctx, "serving cached itinerary",
				slog.String("user_id", req.UserID),
				slog.String("record_id", cached.ID),
			)
			cached.Cached = true
			return cached, nil
		}
	}

	// Prior research improves grounding but its absence never blocks
	// generation.
	var researchText string
	if rec, err := s.research.FindRecent(ctx, req.Destination, req.Theme, req.NumDays, now.AddDate(0, 0, -7)); err == nil && rec != nil {
		researchText = rec.ResearchData
	}

	text, err := s.llm.Generate(ctx, itinerarySystemInstruction, buildItineraryPrompt(req, researchText))
	if err != nil {
		return nil, err
	}

	return s.store.Save(ctx, req, text, now)
}

// Get returns the user's itinerary by ID.
func (s *ItineraryService) Get(ctx context.Context, id, userID string) (*types.ItineraryRecord, error) {
	return s.store.GetByID(ctx, id, userID)
}

// History returns all of the user's itineraries, newest first.
func (s *ItineraryService) History(ctx context.Context, userID string) ([]types.ItineraryRecord, error) {
	return s.store.History(ctx, userID)
}

// Delete removes the user's itinerary by ID.
func (s *ItineraryService) Delete(ctx context.Context, id, userID string) error {
	return s.store.Delete(ctx, id, userID)
}
