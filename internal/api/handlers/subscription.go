package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tripplanner/internal/core"
	"tripplanner/internal/external"
	"tripplanner/internal/types"
)

// PaymentService abstracts the checkout and verification flow.
// Implemented by billing.Verifier.
type PaymentService interface {
	CreateCheckout(ctx context.Context, userID string) (*external.CheckoutSession, error)
	VerifyAndActivate(ctx context.Context, sessionID string) (*types.Subscription, error)
}

// StatusService reports plan and usage for the status endpoint.
// Implemented by billing.QuotaGate.
type StatusService interface {
	Status(ctx context.Context, userID string) (*types.SubscriptionStatusView, error)
}

// VerifyPaymentRequest is the request body for POST /v1/subscription/verify-payment.
type VerifyPaymentRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// CheckoutResponse is the response data for POST /v1/subscription/create-session.
type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// SubscriptionHandler handles the payment and plan status endpoints.
type SubscriptionHandler struct {
	payments  PaymentService
	status    StatusService
	validator *core.Validator
	logger    *slog.Logger
}

// NewSubscriptionHandler creates a SubscriptionHandler.
func NewSubscriptionHandler(payments PaymentService, status StatusService, v *core.Validator, l *slog.Logger) *SubscriptionHandler {
	if l == nil {
		l = slog.Default()
	}
	return &SubscriptionHandler{
		payments:  payments,
		status:    status,
		validator: v,
		logger:    l,
	}
}

// RegisterRoutes mounts the subscription endpoints. None are metered:
// checkout and status identify the user, and verification is keyed on the
// session alone since the user mapping was stored at checkout time.
func (h *SubscriptionHandler) RegisterRoutes(r chi.Router, _, identity func(http.Handler) http.Handler) {
	r.With(identity).Post("/subscription/create-session", h.CreateSession)
	r.Post("/subscription/verify-payment", h.VerifyPayment)
	r.With(identity).Get("/subscription/status", h.Status)
}

// CreateSession handles POST /v1/subscription/create-session. It opens a
// provider checkout session and returns the URL the client should redirect
// the user to.
func (h *SubscriptionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := types.GetUserID(r.Context())

	sess, err := h.payments.CreateCheckout(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, "checkout session created", CheckoutResponse{
		CheckoutURL: sess.URL,
		SessionID:   sess.ID,
	})
}

// VerifyPayment handles POST /v1/subscription/verify-payment. The client
// calls this after returning from checkout; verification against the provider
// happens here, not via webhooks.
func (h *SubscriptionHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	sub, err := h.payments.VerifyAndActivate(r.Context(), req.SessionID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, "payment verified and plan activated", sub)
}

// Status handles GET /v1/subscription/status.
func (h *SubscriptionHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, _ := types.GetUserID(r.Context())

	view, err := h.status.Status(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.Respond(w, r, http.StatusOK, "subscription status retrieved", view)
}
