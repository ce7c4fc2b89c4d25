// Package main is the entry point for the trip planner API server.
//
// It loads configuration, connects the Postgres pool, constructs the external
// provider clients (Stripe, Gemini, SerpAPI), wires the billing and travel
// services into the HTTP chassis, and starts listening for requests.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tripplanner/internal/api/handlers"
	"tripplanner/internal/billing"
	"tripplanner/internal/config"
	"tripplanner/internal/core"
	"tripplanner/internal/db"
	"tripplanner/internal/external"
	"tripplanner/internal/telemetry"
	"tripplanner/internal/travel"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("trip planner API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	// Database pool.
	ctx := context.Background()
	pool, err := newPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	// Repositories.
	planRepo := db.NewPlanRepo(pool, logger)
	usageRepo := db.NewUsageRepo(pool)
	checkoutRepo := db.NewCheckoutRepo(pool)
	researchRepo := db.NewResearchRepo(pool)
	itineraryRepo := db.NewItineraryRepo(pool)
	flightsRepo := db.NewFlightsRepo(pool)
	placesRepo := db.NewPlacesRepo(pool)

	// External provider clients.
	stripeClient := external.NewStripeClient(
		&http.Client{Timeout: 30 * time.Second},
		external.StripeClientConfig{
			SecretKey:   cfg.Billing.StripeSecretKey.Unmask(),
			Logger:      logger,
			ProductName: cfg.Billing.ProductName,
			AmountCents: cfg.Billing.PaidPlanAmountCents,
			Currency:    cfg.Billing.Currency,
		},
	)
	geminiClient := external.NewGeminiClient(
		&http.Client{Timeout: cfg.Agent.Timeout},
		external.GeminiClientConfig{
			APIKey: cfg.Agent.GeminiAPIKey.Unmask(),
			Model:  cfg.Agent.GeminiModel,
			Logger: logger,
		},
	)
	serpClient := external.NewSerpAPIClient(
		&http.Client{Timeout: 60 * time.Second},
		external.SerpAPIClientConfig{
			APIKey: cfg.Search.SerpAPIKey.Unmask(),
			Logger: logger,
		},
	)

	// Billing services.
	quota := billing.NewQuotaGate(planRepo, usageRepo, cfg.Billing.FreeMonthlyPostLimit, logger)
	verifier := billing.NewVerifier(planRepo, checkoutRepo, stripeClient, billing.VerifierConfig{
		AppBaseURL:       cfg.Server.AppBaseURL,
		PaidPlanDuration: cfg.Billing.PaidPlanDuration,
	}, logger)

	// Travel services.
	researchSvc := travel.NewResearchService(researchRepo, geminiClient, cfg.Search.ItineraryCacheTTL, logger)
	itinerarySvc := travel.NewItineraryService(itineraryRepo, researchRepo, geminiClient, cfg.Search.ItineraryCacheTTL, logger)
	flightSvc := travel.NewFlightService(flightsRepo, serpClient, cfg.Search.FlightCacheTTL, logger)
	placesSvc := travel.NewPlacesService(placesRepo, serpClient, cfg.Search.FlightCacheTTL, logger)

	// HTTP chassis.
	srv, err := core.NewServer(cfg, quota, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = []core.HealthProbe{poolProbe{pool: pool}}

	if cfg.Observability.EnableMetrics {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Observability.AWSRegion))
		if err != nil {
			return fmt.Errorf("loading AWS configuration: %w", err)
		}
		srv.Metrics = telemetry.NewCloudWatchCollector(
			cloudwatch.NewFromConfig(awsCfg),
			cfg.Observability.MetricNamespace,
			logger,
		)
	}

	// Handlers.
	researchHandler := handlers.NewResearchHandler(researchSvc, srv.Validator, logger)
	itineraryHandler := handlers.NewItineraryHandler(itinerarySvc, srv.Validator, logger)
	flightHandler := handlers.NewFlightHandler(flightSvc, srv.Validator, logger)
	placesHandler := handlers.NewPlacesHandler(placesSvc, srv.Validator, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(verifier, quota, srv.Validator, logger)

	for _, register := range []func(chi.Router, func(http.Handler) http.Handler, func(http.Handler) http.Handler){
		researchHandler.RegisterRoutes,
		itineraryHandler.RegisterRoutes,
		flightHandler.RegisterRoutes,
		placesHandler.RegisterRoutes,
		subscriptionHandler.RegisterRoutes,
	} {
		srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
			register(r, srv.PaywallMiddleware, srv.IdentityMiddleware)
		})
	}

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// newPool builds the pgx connection pool from the database configuration.
func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.Database.HealthCheckPeriod
	poolCfg.ConnConfig.ConnectTimeout = cfg.Database.AcquireTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return pool, nil
}

// poolProbe reports database health for the /health endpoint.
type poolProbe struct {
	pool *pgxpool.Pool
}

func (p poolProbe) Name() string { return "database" }

func (p poolProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
