// Package config defines the global configuration structure for the trip
// planner service. Configuration is loaded once at process initialization and
// is immutable thereafter. It follows 12-Factor App principles by strictly
// separating code from configuration.
//
// Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File (Lowest)
//
// Any missing required value or invalid format causes the application to exit
// immediately on startup (fail fast).
package config

import (
	"time"

	"tripplanner/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type used
// throughout configuration to prevent accidental logging of sensitive values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the trip planner service.
// It is populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require
// (Least Privilege principle).
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"tripplanner-api"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Domain Configurations
	Server        ServerConfig
	Database      DatabaseConfig
	Billing       BillingConfig
	Agent         AgentConfig
	Search        SearchConfig
	Security      SecurityConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server and public URL configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// Public base URL for checkout redirects (no trailing slash)
	AppBaseURL      string        `envconfig:"APP_BASE_URL" validate:"required,url"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required,url"`

	// Tuning Parameters
	MaxConns          int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns          int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime   time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	AcquireTimeout    time.Duration `envconfig:"DB_ACQUIRE_TIMEOUT" default:"2s"`
	HealthCheckPeriod time.Duration `envconfig:"DB_HEALTH_CHECK_PERIOD" default:"1m"`
}

// BillingConfig holds Stripe payment integration settings and the metering
// policy for the free tier.
type BillingConfig struct {
	StripeSecretKey SecretString `envconfig:"STRIPE_SECRET_KEY" validate:"required"`
	// Price of the paid plan in the smallest currency unit (cents).
	PaidPlanAmountCents int64  `envconfig:"PAID_PLAN_AMOUNT_CENTS" default:"1000"`
	Currency            string `envconfig:"BILLING_CURRENCY" default:"usd"`
	ProductName         string `envconfig:"BILLING_PRODUCT_NAME" default:"AI Travel Planner Pro"`
	// Paid plan validity window, counted from verification time.
	PaidPlanDuration time.Duration `envconfig:"PAID_PLAN_DURATION" default:"720h"`
	// Monthly POST allowance for the free tier. Zero or negative disables
	// metering entirely (unmetered deployments).
	FreeMonthlyPostLimit int `envconfig:"FREE_MONTHLY_POST_LIMIT" default:"15"`
}

// AgentConfig holds LLM provider credentials and generation settings.
type AgentConfig struct {
	GeminiAPIKey SecretString  `envconfig:"GEMINI_API_KEY" validate:"required"`
	GeminiModel  string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	Timeout      time.Duration `envconfig:"AGENT_TIMEOUT" default:"120s"`
}

// SearchConfig holds SerpAPI credentials and cache freshness windows.
type SearchConfig struct {
	SerpAPIKey SecretString `envconfig:"SERPAPI_KEY" validate:"required"`
	// Cached flight results older than this are re-fetched.
	FlightCacheTTL time.Duration `envconfig:"FLIGHT_CACHE_TTL" default:"2h"`
	// Cached itineraries older than this are regenerated.
	ItineraryCacheTTL time.Duration `envconfig:"ITINERARY_CACHE_TTL" default:"24h"`
}

// SecurityConfig holds CORS settings.
type SecurityConfig struct {
	CorsAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ObservabilityConfig holds telemetry and monitoring settings.
type ObservabilityConfig struct {
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"TripPlanner"`
	EnableMetrics   bool   `envconfig:"ENABLE_METRICS" default:"false"`
	AWSRegion       string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates a failure when parsing environment variable values
	// into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
