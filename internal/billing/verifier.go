package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tripplanner/internal/external"
	"tripplanner/internal/types"
)

// VerifierConfig holds the policy knobs for payment verification.
type VerifierConfig struct {
	// AppBaseURL is the public base URL used to build checkout redirect
	// targets (no trailing slash).
	AppBaseURL string
	// PaidPlanDuration is the validity window granted on verification,
	// counted from verification time.
	PaidPlanDuration time.Duration
}

// Verifier drives the poll-based payment flow: it opens checkout sessions
// with the provider and, on demand, verifies a session's payment status and
// activates the paid plan. There are no provider webhooks; the client calls
// verify after returning from checkout.
type Verifier struct {
	subs      SubscriptionStore
	checkouts CheckoutStore
	provider  external.PaymentProvider
	cfg       VerifierConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewVerifier creates a Verifier.
func NewVerifier(
	subs SubscriptionStore,
	checkouts CheckoutStore,
	provider external.PaymentProvider,
	cfg VerifierConfig,
	logger *slog.Logger,
) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		subs:      subs,
		checkouts: checkouts,
		provider:  provider,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the verifier's time source. Tests only.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// CreateCheckout opens a provider checkout session for the user and records
// the session-to-user mapping for later verification.
func (v *Verifier) CreateCheckout(ctx context.Context, userID string) (*external.CheckoutSession, error) {
	successURL := v.cfg.AppBaseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := v.cfg.AppBaseURL + "/payment/cancel"

	sess, err := v.provider.CreateCheckoutSession(ctx, userID, successURL, cancelURL)
	if err != nil {
		return nil, err
	}

	if err := v.checkouts.SaveSession(ctx, sess.ID, userID, v.now().UTC()); err != nil {
		// The provider session exists but we lost the mapping; surface the
		// error so the client retries checkout rather than stranding the user
		// with an unverifiable session.
		return nil, err
	}

	v.logger.InfoContext(ctx, "checkout session created",
		slog.String("user_id", userID),
		slog.String("session_id", sess.ID),
	)
	return sess, nil
}

// VerifyAndActivate checks the payment status of a previously created session
// and, if settled, activates the paid plan for the session's user.
//
// The operation is idempotent: activation is keyed on the provider payment
// reference, so verifying the same paid session twice returns the original
// validity window unchanged.
func (v *Verifier) VerifyAndActivate(ctx context.Context, sessionID string) (*types.Subscription, error) {
	local, err := v.checkouts.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	remote, err := v.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// The provider's client reference must agree with the local mapping.
	if remote.ClientRef != "" && remote.ClientRef != local.UserID {
		return nil, types.NewAppError(
			types.ErrCodeConflictSessionOwner,
			fmt.Sprintf("checkout session %s does not belong to its claimed user", sessionID),
			nil,
		)
	}

	if !remote.Paid() {
		return nil, types.NewAppError(
			types.ErrCodeValidationPaymentOpen,
			"payment not completed for this checkout session",
			nil,
		)
	}

	paymentRef := remote.PaymentIntent
	if paymentRef == "" {
		// Fall back to the session ID; it is equally unique per payment.
		paymentRef = remote.ID
	}

	now := v.now().UTC()
	sub, err := v.subs.ActivatePaid(ctx, local.UserID, paymentRef, sessionID, now, now.Add(v.cfg.PaidPlanDuration), now)
	if err != nil {
		return nil, err
	}

	v.logger.InfoContext(ctx, "paid plan activated",
		slog.String("user_id", local.UserID),
		slog.String("session_id", sessionID),
		slog.String("payment_ref", paymentRef),
	)
	return sub, nil
}
