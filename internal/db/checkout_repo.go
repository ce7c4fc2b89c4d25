package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"tripplanner/internal/types"
)

// CheckoutRepo persists the mapping between provider checkout sessions and
// the local users who initiated them. Verification looks the session up by
// its provider ID to learn which user to upgrade.
type CheckoutRepo struct {
	db DBTX
}

// NewCheckoutRepo creates a new CheckoutRepo backed by the given database
// connection (pool or transaction).
func NewCheckoutRepo(db DBTX) *CheckoutRepo {
	return &CheckoutRepo{db: db}
}

// SaveSession records a newly created checkout session. Re-saving the same
// session ID is a no-op.
func (r *CheckoutRepo) SaveSession(ctx context.Context, sessionID, userID string, createdAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO checkout_sessions (session_id, user_id, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO NOTHING`,
		sessionID, userID, createdAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to save checkout session", err)
	}
	return nil
}

// GetSession returns the stored session, or a not-found error when the
// session ID is unknown.
func (r *CheckoutRepo) GetSession(ctx context.Context, sessionID string) (*types.CheckoutSession, error) {
	var sess types.CheckoutSession
	err := r.db.QueryRow(ctx,
		`SELECT session_id, user_id, created_at
		 FROM checkout_sessions
		 WHERE session_id = $1`,
		sessionID,
	).Scan(&sess.SessionID, &sess.UserID, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundSession, "unknown checkout session", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load checkout session", err)
	}
	return &sess, nil
}
