package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"tripplanner/internal/types"
)

// UsageRepo provides data access for the usage_records table, which counts
// metered POST calls per (user_id, month) bucket.
//
// Concurrency is handled in SQL, not in process memory: the conditional
// upsert in IncrementIfUnder is the single serialization point, so any number
// of concurrent application instances agree on how many increments fit under
// the limit.
type UsageRepo struct {
	db DBTX
}

// NewUsageRepo creates a new UsageRepo backed by the given database
// connection (pool or transaction).
func NewUsageRepo(db DBTX) *UsageRepo {
	return &UsageRepo{db: db}
}

// CurrentCount returns the metered call count for the user in the given
// month. A missing row means zero usage.
func (r *UsageRepo) CurrentCount(ctx context.Context, userID string, month types.MonthKey) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT post_count
		 FROM usage_records
		 WHERE user_id = $1 AND month = $2`,
		userID, month,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to load usage count", err)
	}
	return count, nil
}

// IncrementIfUnder atomically increments the user's count for the month,
// but only if the stored count is strictly below limit. Returns the new
// count and true when the increment was applied, or the limit and false
// when the bucket is already full.
//
// The whole check-and-increment is one conditional upsert. The INSERT arm
// covers the first call of the month (a limit of zero rejects even that);
// the DO UPDATE arm guards with post_count < limit so two racing calls at
// count limit-1 cannot both succeed. No row returned means the guard
// rejected the write.
func (r *UsageRepo) IncrementIfUnder(ctx context.Context, userID string, month types.MonthKey, limit int) (int, bool, error) {
	if limit <= 0 {
		return 0, false, nil
	}

	var count int
	err := r.db.QueryRow(ctx,
		`INSERT INTO usage_records (user_id, month, post_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, month) DO UPDATE
		   SET post_count = usage_records.post_count + 1
		   WHERE usage_records.post_count < $3
		 RETURNING post_count`,
		userID, month, limit,
	).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Guard rejected: the bucket is full.
			return limit, false, nil
		}
		return 0, false, types.NewAppError(types.ErrCodeInternalDB, "failed to increment usage count", err)
	}
	return count, true, nil
}

// Record unconditionally increments the user's count for the month. Used for
// telemetry on unmetered deployments where no limit applies.
func (r *UsageRepo) Record(ctx context.Context, userID string, month types.MonthKey) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`INSERT INTO usage_records (user_id, month, post_count)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (user_id, month) DO UPDATE
		   SET post_count = usage_records.post_count + 1
		 RETURNING post_count`,
		userID, month,
	).Scan(&count)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to record usage", err)
	}
	return count, nil
}
