package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripplanner/internal/core"
	"tripplanner/internal/types"
)

// PlacesService abstracts the hotel/restaurant search service.
// Implemented by travel.PlacesService.
type PlacesService interface {
	Search(ctx context.Context, req *types.PlacesSearchRequest) (*types.PlacesRecord, error)
}

// PlacesHandler handles hotel and restaurant search endpoints.
type PlacesHandler struct {
	service   PlacesService
	validator *core.Validator
	logger    *slog.Logger
}

// NewPlacesHandler creates a PlacesHandler.
func NewPlacesHandler(svc PlacesService, v *core.Validator, l *slog.Logger) *PlacesHandler {
	if l == nil {
		l = slog.Default()
	}
	return &PlacesHandler{
		service:   svc,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts the places endpoints.
func (h *PlacesHandler) RegisterRoutes(r chi.Router, paywall, _ func(http.Handler) http.Handler) {
	r.With(paywall).Post("/places/search", h.Search)
}

// Search handles POST /v1/places/search.
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req types.PlacesSearchRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if userID, ok := types.GetUserID(r.Context()); ok {
		req.UserID = userID
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	rec, err := h.service.Search(r.Context(), &req)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, cacheNote("places search completed", rec.Cached), rec)
}
