package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripplanner/internal/core"
	"tripplanner/internal/types"
)

// ItineraryService abstracts the itinerary generation service.
// Implemented by travel.ItineraryService.
type ItineraryService interface {
	Generate(ctx context.Context, req *types.ItineraryRequest) (*types.ItineraryRecord, error)
	Get(ctx context.Context, id, userID string) (*types.ItineraryRecord, error)
	History(ctx context.Context, userID string) ([]types.ItineraryRecord, error)
	Delete(ctx context.Context, id, userID string) error
}

// ItineraryHandler handles itinerary endpoints.
type ItineraryHandler struct {
	service   ItineraryService
	validator *core.Validator
	logger    *slog.Logger
}

// NewItineraryHandler creates an ItineraryHandler.
func NewItineraryHandler(svc ItineraryService, v *core.Validator, l *slog.Logger) *ItineraryHandler {
	if l == nil {
		l = slog.Default()
	}
	return &ItineraryHandler{
		service:   svc,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts the itinerary endpoints. Only generation is metered;
// reads and deletes are free.
func (h *ItineraryHandler) RegisterRoutes(r chi.Router, paywall, identity func(http.Handler) http.Handler) {
	r.With(paywall).Post("/itinerary/generate", h.Generate)
	r.With(identity).Get("/itinerary/history", h.History)
	r.With(identity).Get("/itinerary/{id}", h.Get)
	r.With(identity).Delete("/itinerary/{id}", h.Delete)
}

// Generate handles POST /v1/itinerary/generate.
func (h *ItineraryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req types.ItineraryRequest
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

	rec, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, cacheNote("itinerary generated", rec.Cached), rec)
}

// Get handles GET /v1/itinerary/{id}. Ownership is enforced by the store;
// another user's itinerary ID reads as not found.
func (h *ItineraryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, _ := types.GetUserID(r.Context())

	rec, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, "itinerary retrieved", rec)
}

// History handles GET /v1/itinerary/history.
func (h *ItineraryHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := types.GetUserID(r.Context())

	records, err := h.service.History(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, "itinerary history retrieved", records)
}

// Delete handles DELETE /v1/itinerary/{id}.
func (h *ItineraryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID, _ := types.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, "itinerary deleted", nil)
}
