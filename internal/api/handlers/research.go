// Package handlers contains the HTTP handler implementations for the trip
// planner API. Handlers declare the service contracts they need as local
// interfaces and receive implementations via their constructors, which keeps
// them decoupled from concrete service types and easy to mock in tests.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripplanner/internal/core"
	"tripplanner/internal/types"
)

// ResearchService abstracts the destination research service.
// Implemented by travel.ResearchService.
type ResearchService interface {
	Research(ctx context.Context, req *types.ResearchRequest) (*types.ResearchRecord, error)
	History(ctx context.Context, userID, destination string) ([]types.ResearchRecord, error)
}

// ResearchHandler handles destination research endpoints.
type ResearchHandler struct {
	service   ResearchService
	validator *core.Validator
	logger    *slog.Logger
}

// NewResearchHandler creates a ResearchHandler.
func NewResearchHandler(svc ResearchService, v *core.Validator, l *slog.Logger) *ResearchHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ResearchHandler{
		service:   svc,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts the research endpoints. The paywall middleware meters
// the POST; the identity middleware resolves the user on the free read.
func (h *ResearchHandler) RegisterRoutes(r chi.Router, paywall, identity func(http.Handler) http.Handler) {
	r.With(paywall).Post("/research/destination", h.Research)
	r.With(identity).Get("/research/{destination}/history", h.History)
}

// Research handles POST /v1/research/destination.
func (h *ResearchHandler) Research(w http.ResponseWriter, r *http.Request) {
	var req types.ResearchRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	// The paywall already resolved and charged this user; the context value
	// is authoritative over whatever the body claims.
	if userID, ok := types.GetUserID(r.Context()); ok {
		req.UserID = userID
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	rec, err := h.service.Research(r.Context(), &req)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, cacheNote("destination research completed", rec.Cached), rec)
}

// cacheNote marks responses served from stored results so clients can tell a
// replay from a fresh provider call.
func cacheNote(msg string, cached bool) string {
	if cached {
		return msg + " (cached)"
	}
	return msg
}

// History handles GET /v1/research/{destination}/history.
func (h *ResearchHandler) History(w http.ResponseWriter, r *http.Request) {
	destination := chi.URLParam(r, "destination")
	userID, _ := types.GetUserID(r.Context())

	records, err := h.service.History(r.Context(), userID, destination)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, "research history retrieved", records)
}
