// Package billing implements the metering and paywall subsystem: the quota
// gate that admits or denies metered requests, and the payment verifier that
// upgrades users after a completed checkout.
//
// The package holds policy only. All state lives in the database, and every
// concurrent decision point is a single conditional write there, so any
// number of service instances enforce the same limits without coordination.
package billing

import (
	"context"
	"fmt"
	"time"

	"tripplanner/internal/types"
)

// DefaultFreeMonthlyPostLimit is the number of metered POST calls a free-tier
// user gets per calendar month.
const DefaultFreeMonthlyPostLimit = 15

// quotaDeniedMessage renders the user-facing denial message for a full
// monthly bucket.
func quotaDeniedMessage(limit int) string {
	return fmt.Sprintf("Free plan limit reached (%d POST calls/month). Please upgrade.", limit)
}

// SubscriptionStore is the subscription state access the billing layer needs.
// Implemented by db.PlanRepo.
type SubscriptionStore interface {
	// GetSubscription returns the stored subscription, or a synthesized
	// Free/Active record when the user has no row.
	GetSubscription(ctx context.Context, userID string) (*types.Subscription, error)

	// ActivatePaid upserts the user to Paid/Active with the given validity
	// window, idempotent per provider payment reference.
	ActivatePaid(ctx context.Context, userID, paymentRef, orderRef string, start, end, verifiedAt time.Time) (*types.Subscription, error)
}

// UsageLedger is the usage counting access the billing layer needs.
// Implemented by db.UsageRepo.
type UsageLedger interface {
	// CurrentCount returns the metered call count for the month; a missing
	// bucket is zero.
	CurrentCount(ctx context.Context, userID string, month types.MonthKey) (int, error)

	// IncrementIfUnder atomically increments the bucket only while the
	// stored count is below limit, returning the new count and whether the
	// increment was applied.
	IncrementIfUnder(ctx context.Context, userID string, month types.MonthKey, limit int) (int, bool, error)

	// Record unconditionally increments the bucket (unmetered telemetry).
	Record(ctx context.Context, userID string, month types.MonthKey) (int, error)
}

// CheckoutStore is the checkout session persistence the verifier needs.
// Implemented by db.CheckoutRepo.
type CheckoutStore interface {
	SaveSession(ctx context.Context, sessionID, userID string, createdAt time.Time) error
	GetSession(ctx context.Context, sessionID string) (*types.CheckoutSession, error)
}
