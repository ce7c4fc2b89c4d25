package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tripplanner/internal/core"
	"tripplanner/internal/types"
)

// FlightService abstracts the flight search service.
// Implemented by travel.FlightService.
type FlightService interface {
	Search(ctx context.Context, req *types.FlightSearchRequest) (*types.FlightSearchRecord, error)
}

// FlightHandler handles flight search endpoints.
type FlightHandler struct {
	service   FlightService
	validator *core.Validator
	logger    *slog.Logger
}

// NewFlightHandler creates a FlightHandler.
func NewFlightHandler(svc FlightService, v *core.Validator, l *slog.Logger) *FlightHandler {
	if l == nil {
		l = slog.Default()
	}
	return &FlightHandler{
		service:   svc,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts the flight endpoints.
func (h *FlightHandler) RegisterRoutes(r chi.Router, paywall, _ func(http.Handler) http.Handler) {
	r.With(paywall).Post("/flights/search", h.Search)
}

// Search handles POST /v1/flights/search. Airport codes are normalized to
// uppercase before validation so "jfk" and "JFK" behave identically.
func (h *FlightHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req types.FlightSearchRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if userID, ok := types.GetUserID(r.Context()); ok {
		req.UserID = userID
	}
	req.Source = strings.ToUpper(req.Source)
	req.Destination = strings.ToUpper(req.Destination)

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	rec, err := h.service.Search(r.Context(), &req)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, cacheNote("flight search completed", rec.Cached), rec)
}
