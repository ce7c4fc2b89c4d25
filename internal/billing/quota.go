package billing

import (
	"context"
	"log/slog"
	"time"

	"tripplanner/internal/types"
)

// QuotaGate decides whether a metered request may proceed. Paid users with an
// unexpired validity window always pass; their usage is still recorded so the
// monthly count stays meaningful, it just carries no limit. Everyone else
// charges one unit against their monthly bucket, atomically, before the
// wrapped operation runs. A consumed unit is never refunded, even when the
// operation later fails.
type QuotaGate struct {
	subs   SubscriptionStore
	usage  UsageLedger
	limit  int
	logger *slog.Logger
	now    func() time.Time
}

// NewQuotaGate creates a QuotaGate with the given monthly limit. A limit of
// zero or less disables metering: every request is admitted and usage is
// recorded for telemetry only.
func NewQuotaGate(subs SubscriptionStore, usage UsageLedger, limit int, logger *slog.Logger) *QuotaGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaGate{
		subs:   subs,
		usage:  usage,
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the gate's time source. Tests only.
func (g *QuotaGate) WithClock(now func() time.Time) *QuotaGate {
	g.now = now
	return g
}

// Authorize renders the admission decision for one metered request by the
// given user. The month bucket is derived exactly once, from a single
// timestamp, so a request straddling a month rollover is charged consistently
// to one bucket.
func (g *QuotaGate) Authorize(ctx context.Context, userID string) (types.Decision, error) {
	now := g.now()
	month := types.MonthOf(now)

	if g.limit <= 0 {
		count, err := g.usage.Record(ctx, userID, month)
		if err != nil {
			return types.Decision{}, err
		}
		return types.Decision{Allowed: true, UsageCount: count}, nil
	}

	sub, err := g.subs.GetSubscription(ctx, userID)
	if err != nil {
		return types.Decision{}, err
	}

	// An expired paid plan falls back to metered free-tier treatment; the
	// stored row is left as-is. An active paid plan is never limited but the
	// usage count still increments.
	if sub.Effective(now) == types.StatusPaidActive {
		count, err := g.usage.Record(ctx, userID, month)
		if err != nil {
			return types.Decision{}, err
		}
		return types.Decision{Allowed: true, UsageCount: count}, nil
	}

	count, ok, err := g.usage.IncrementIfUnder(ctx, userID, month, g.limit)
	if err != nil {
		return types.Decision{}, err
	}
	if !ok {
		g.logger.InfoContext(ctx, "quota exceeded",
			slog.String("user_id", userID),
			slog.String("month", string(month)),
			slog.Int("limit", g.limit),
		)
		return types.Decision{
			Allowed:    false,
			Reason:     quotaDeniedMessage(g.limit),
			UsageCount: count,
		}, nil
	}

	return types.Decision{Allowed: true, UsageCount: count}, nil
}

// Status reports the user's plan and current-month usage for the status
// endpoint. The plan literal uses the external names ("basic"/"paid").
func (g *QuotaGate) Status(ctx context.Context, userID string) (*types.SubscriptionStatusView, error) {
	now := g.now()

	sub, err := g.subs.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	count, err := g.usage.CurrentCount(ctx, userID, types.MonthOf(now))
	if err != nil {
		return nil, err
	}

	plan := types.PlanFree
	if sub.Effective(now) == types.StatusPaidActive {
		plan = types.PlanPaid
	}

	return &types.SubscriptionStatusView{
		Plan:           plan.ExternalName(),
		UsageThisMonth: count,
	}, nil
}
