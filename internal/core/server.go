// Package core provides the API chassis for the trip planner service. It
// creates the chi router, enforces cross-cutting concerns (security, logging,
// observability, error handling, and the metered-request paywall) before
// requests reach domain handlers, and owns the response envelope.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tripplanner/internal/config"
	"tripplanner/internal/types"
)

// MetricsCollector defines the interface for recording API telemetry.
type MetricsCollector interface {
	// RecordRequest records request latency and count for one completed call.
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// QuotaAuthorizer renders admission decisions for metered requests.
// Implemented by billing.QuotaGate.
type QuotaAuthorizer interface {
	Authorize(ctx context.Context, userID string) (types.Decision, error)
}

// RouteRegistrar mounts a group of domain handler routes onto the router.
// The indirection avoids an import cycle between core and handler packages.
type RouteRegistrar func(r chi.Router)

// Server encapsulates all dependencies for the API, allowing injection during
// testing and distinct configuration per environment.
type Server struct {
	Config    *config.Config
	Logger    *slog.Logger
	Validator *Validator
	Metrics   MetricsCollector
	Quota     QuotaAuthorizer

	// V1RouteRegistrars are mounted under /v1 by MountRoutes. Populated by
	// the application entry point.
	V1RouteRegistrars []RouteRegistrar

	// HealthProbes are checked concurrently by the /health endpoint.
	HealthProbes []HealthProbe

	router *chi.Mux
}

// NewServer initializes dependencies and prepares the server for route
// mounting. The caller registers V1RouteRegistrars and calls MountRoutes
// after construction.
func NewServer(cfg *config.Config, quota QuotaAuthorizer, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if quota == nil {
		return nil, fmt.Errorf("quota authorizer must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		Quota:     quota,
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the http.Handler for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
