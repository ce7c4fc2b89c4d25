package travel

import (
	"context"
	"log/slog"
	"time"

	"tripplanner/internal/external"
	"tripplanner/internal/types"
)

// ResearchService produces destination research via the LLM, serving a fresh
// cached result for identical destination/theme/length inquiries when one
// exists.
type ResearchService struct {
	store    ResearchStore
	llm      external.LLMClient
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewResearchService creates a ResearchService. cacheTTL bounds how old a
// stored result may be and still be served; zero disables the cache.
func NewResearchService(store ResearchStore, llm external.LLMClient, cacheTTL time.Duration, logger *slog.Logger) *ResearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchService{
		store:    store,
		llm:      llm,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the service's time source. Tests only.
func (s *ResearchService) WithClock(now func() time.Time) *ResearchService {
	s.now = now
	return s
}

// Research returns destination research for the request, generating it when
// no fresh cached result exists. Generated output is always persisted under
// the requesting user.
func (s *ResearchService) Research(ctx context.Context, req *types.ResearchRequest) (*types.ResearchRecord, error) {
	now := s.now().UTC()

	if s.cacheTTL > 0 {
		cached, err := s.store.FindRecent(ctx, req.Destination, req.Theme, req.NumDays, now.Add(-s.cacheTTL))
		if err != nil {
			return nil, err
		}
		if cached != nil {
			s.logger.InfoContext(ctx, "serving cached research",
				slog.String("destination", req.Destination),
				slog.String("record_id", cached.ID),
			)
			cached.Cached = true
			return cached, nil
		}
	}

	text, err := s.llm.Generate(ctx, researchSystemInstruction, buildResearchPrompt(req))
	if err != nil {
		return nil, err
	}

	return s.store.Save(ctx, req, text, now)
}

// History returns the user's past research for a destination, newest first.
func (s *ResearchService) History(ctx context.Context, userID, destination string) ([]types.ResearchRecord, error) {
	return s.store.History(ctx, userID, destination)
}
