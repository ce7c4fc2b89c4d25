package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"tripplanner/internal/types"
)

// PlanRepo manages durable subscription state in the subscriptions table.
// At most one row exists per user (user_id is the primary key).
//
// Key invariants:
//   - GetSubscription never fails on a missing row; absence means the free
//     tier, and a synthesized Free/Active record is returned.
//   - ActivatePaid is idempotent per provider payment reference: re-applying
//     the same payment is a no-op that leaves the stored validity window
//     untouched.
//   - Expiry is lazy. Stored rows are never rewritten when their end date
//     passes; callers project the effective status at read time.
type PlanRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewPlanRepo creates a new PlanRepo backed by the given database connection
// (pool or transaction).
func NewPlanRepo(db DBTX, logger *slog.Logger) *PlanRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanRepo{db: db, logger: logger}
}

// GetSubscription returns the stored subscription for the user, or a
// synthesized Free/Active record when no row exists.
func (r *PlanRepo) GetSubscription(ctx context.Context, userID string) (*types.Subscription, error) {
	var sub types.Subscription
	err := r.db.QueryRow(ctx,
		`SELECT user_id, plan, status, start_date, end_date,
		        COALESCE(provider_payment_ref, ''), COALESCE(provider_order_ref, ''),
		        last_verified
		 FROM subscriptions
		 WHERE user_id = $1`,
		userID,
	).Scan(
		&sub.UserID,
		&sub.Plan,
		&sub.Status,
		&sub.StartDate,
		&sub.EndDate,
		&sub.ProviderPaymentRef,
		&sub.ProviderOrderRef,
		&sub.LastVerified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &types.Subscription{
				UserID: userID,
				Plan:   types.PlanFree,
				Status: types.SubStatusActive,
			}, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load subscription", err)
	}
	return &sub, nil
}

// ActivatePaid upserts the user's subscription to Paid/Active with the given
// validity window, keyed by the provider payment reference.
//
// Idempotency is enforced in SQL: the upsert only writes when the stored
// provider_payment_ref differs from the incoming one. When the same payment
// is applied twice, RowsAffected is 0 and the stored record is re-read and
// returned unchanged, so the validity window is never silently extended.
func (r *PlanRepo) ActivatePaid(
	ctx context.Context,
	userID string,
	paymentRef, orderRef string,
	start, end, verifiedAt time.Time,
) (*types.Subscription, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO subscriptions
		   (user_id, plan, status, start_date, end_date,
		    provider_payment_ref, provider_order_ref, last_verified)
		 VALUES ($1, 'paid', 'active', $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		   plan = EXCLUDED.plan,
		   status = EXCLUDED.status,
		   start_date = EXCLUDED.start_date,
		   end_date = EXCLUDED.end_date,
		   provider_payment_ref = EXCLUDED.provider_payment_ref,
		   provider_order_ref = EXCLUDED.provider_order_ref,
		   last_verified = EXCLUDED.last_verified
		 WHERE subscriptions.provider_payment_ref IS DISTINCT FROM EXCLUDED.provider_payment_ref`,
		userID, start, end, paymentRef, orderRef, verifiedAt,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to activate paid subscription", err)
	}

	if tag.RowsAffected() == 0 {
		// Same payment re-applied; stored window stands.
		r.logger.Info("duplicate payment activation ignored",
			slog.String("user_id", userID),
			slog.String("payment_ref", paymentRef),
		)
	}

	return r.GetSubscription(ctx, userID)
}
