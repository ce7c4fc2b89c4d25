package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tripplanner/internal/types"

	stripe "github.com/stripe/stripe-go/v82"
)

// stripeAPIBase is the default Stripe API base URL.
// Overridable in tests via StripeClientConfig.BaseURL.
const stripeAPIBase = "https://api.stripe.com"

// StripeClientConfig holds the configuration for creating a StripeClient.
type StripeClientConfig struct {
	SecretKey string
	BaseURL   string // Override for testing; defaults to stripeAPIBase
	Logger    *slog.Logger

	// One-time paid plan line item.
	ProductName string
	AmountCents int64
	Currency    string
}

// CheckoutSession is the subset of a Stripe Checkout Session the billing
// layer needs.
type CheckoutSession struct {
	ID            string
	URL           string
	Status        string // "open", "complete", "expired"
	PaymentStatus string // "paid", "unpaid", "no_payment_required"
	PaymentIntent string
	ClientRef     string
}

// Paid reports whether the session represents a settled payment.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

// StripeClient talks to the Stripe REST API directly through BaseClient.
// This routes all requests through the service's resilience infrastructure
// (circuit breaker, retries, error mapping) and makes testing with httptest
// straightforward. The stripe-go SDK is used only for its pinned API version.
type StripeClient struct {
	base      *BaseClient
	secretKey string
	baseURL   string
	logger    *slog.Logger

	productName string
	amountCents int64
	currency    string
}

// NewStripeClient creates a new StripeClient.
func NewStripeClient(httpClient *http.Client, cfg StripeClientConfig) *StripeClient {
	base := NewBaseClient(
		httpClient,
		"stripe",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"TripPlanner/1.0",
	)
	return NewStripeClientWithBase(base, cfg)
}

// NewStripeClientWithBase creates a StripeClient with a pre-configured
// BaseClient. This is useful for testing when you want to control the
// BaseClient configuration.
func NewStripeClientWithBase(base *BaseClient, cfg StripeClientConfig) *StripeClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &StripeClient{
		base:        base,
		secretKey:   cfg.SecretKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		logger:      logger,
		productName: cfg.ProductName,
		amountCents: cfg.AmountCents,
		currency:    cfg.Currency,
	}
}

// CreateCheckoutSession opens a one-time payment Checkout Session for the
// paid plan. Sets client_reference_id to the user ID so verification can
// cross-check the session against the local record.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, userID, successURL, cancelURL string) (*CheckoutSession, error) {
	params := url.Values{}
	params.Set("mode", "payment")
	params.Set("client_reference_id", userID)
	params.Set("success_url", successURL)
	params.Set("cancel_url", cancelURL)
	params.Set("metadata[userid]", userID)
	// Inline price data: the paid plan is a single one-time charge, so no
	// pre-provisioned Price object is required.
	params.Set("line_items[0][price_data][currency]", s.currency)
	params.Set("line_items[0][price_data][product_data][name]", s.productName)
	params.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(s.amountCents, 10))
	params.Set("line_items[0][quantity]", "1")

	resp, err := s.doPost(ctx, "/v1/checkout/sessions", params)
	if err != nil {
		return nil, s.wrapStripeError("CreateCheckoutSession", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleErrorResponse(resp, "CreateCheckoutSession")
	}

	var session stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to decode Stripe checkout session response",
			err,
		)
	}

	return session.toDomain(), nil
}

// GetCheckoutSession retrieves a Checkout Session by ID so the billing layer
// can poll its payment status.
func (s *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	resp, err := s.doGet(ctx, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, s.wrapStripeError("GetCheckoutSession", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, types.NewAppError(types.ErrCodeNotFoundSession, "checkout session not found", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.handleErrorResponse(resp, "GetCheckoutSession")
	}

	var session stripeCheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to decode Stripe checkout session response",
			err,
		)
	}

	return session.toDomain(), nil
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

// doGet performs an authenticated GET request to the Stripe API.
func (s *StripeClient) doGet(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := s.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	s.setAuthHeaders(req)

	return s.base.Do(req)
}

// doPost performs an authenticated POST request to the Stripe API with
// form-encoded body.
func (s *StripeClient) doPost(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := s.baseURL + path
	body := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.setAuthHeaders(req)

	return s.base.Do(req)
}

// setAuthHeaders sets the Stripe API authentication and version headers.
func (s *StripeClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Stripe-Version", stripe.APIVersion)
}

// ---------------------------------------------------------------------------
// Error Handling
// ---------------------------------------------------------------------------

// stripeErrorResponse represents the JSON error body returned by the Stripe API.
type stripeErrorResponse struct {
	Error stripeErrorBody `json:"error"`
}

type stripeErrorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param"`
}

// handleErrorResponse reads a Stripe error response and maps it to a types.AppError.
func (s *StripeClient) handleErrorResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamPayment,
			fmt.Sprintf("%s: Stripe returned status %d and response body was unreadable", operation, resp.StatusCode),
			readErr,
		)
	}

	var stripeErr stripeErrorResponse
	if jsonErr := json.Unmarshal(body, &stripeErr); jsonErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamPayment,
			fmt.Sprintf("%s: Stripe returned status %d with non-JSON body", operation, resp.StatusCode),
			jsonErr,
		)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			fmt.Sprintf("%s: Stripe rate limit exceeded", operation),
			nil,
		)
	case resp.StatusCode >= 500:
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("%s: Stripe server error: %s", operation, stripeErr.Error.Message),
			nil,
		)
	default:
		return types.NewAppError(
			types.ErrCodeUpstreamPayment,
			fmt.Sprintf("%s: Stripe error (%d): %s", operation, resp.StatusCode, stripeErr.Error.Message),
			nil,
		)
	}
}

// wrapStripeError wraps a BaseClient transport error with context.
func (s *StripeClient) wrapStripeError(operation string, err error) error {
	// BaseClient errors (circuit breaker, retries exhausted) already carry
	// the right upstream error code.
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(
		types.ErrCodeUpstreamPayment,
		fmt.Sprintf("%s: Stripe request failed: %v", operation, err),
		err,
	)
}

// ---------------------------------------------------------------------------
// Stripe Response Types (for JSON deserialization)
// ---------------------------------------------------------------------------

type stripeCheckoutSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"payment_status"`
	PaymentIntent     string `json:"payment_intent"`
	ClientReferenceID string `json:"client_reference_id"`
}

func (s *stripeCheckoutSession) toDomain() *CheckoutSession {
	return &CheckoutSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        s.Status,
		PaymentStatus: s.PaymentStatus,
		PaymentIntent: s.PaymentIntent,
		ClientRef:     s.ClientReferenceID,
	}
}
