package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tripplanner/internal/types"
)

// ItineraryRepo provides data access for the itineraries table.
type ItineraryRepo struct {
	db DBTX
}

// NewItineraryRepo creates a new ItineraryRepo backed by the given database
// connection (pool or transaction).
func NewItineraryRepo(db DBTX) *ItineraryRepo {
	return &ItineraryRepo{db: db}
}

// Save persists a generated itinerary and returns the stored record.
func (r *ItineraryRepo) Save(ctx context.Context, req *types.ItineraryRequest, itineraryData string, now time.Time) (*types.ItineraryRecord, error) {
	rec := &types.ItineraryRecord{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Destination:   req.Destination,
		Theme:         req.Theme,
		NumDays:       req.NumDays,
		ItineraryData: itineraryData,
		CreatedAt:     now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO itineraries
		   (id, user_id, destination, theme, num_days, itinerary_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, rec.Destination, rec.Theme, rec.NumDays, rec.ItineraryData, rec.CreatedAt,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to save itinerary", err)
	}
	return rec, nil
}

// FindRecent returns the user's newest itinerary matching the destination,
// theme and trip length, created at or after cutoff. Returns nil when no
// fresh itinerary exists.
func (r *ItineraryRepo) FindRecent(ctx context.Context, userID, destination, theme string, numDays int, cutoff time.Time) (*types.ItineraryRecord, error) {
	var rec types.ItineraryRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, destination, theme, num_days, itinerary_data, created_at
		 FROM itineraries
		 WHERE user_id = $1 AND destination = $2 AND theme = $3 AND num_days = $4 AND created_at >= $5
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, destination, theme, numDays, cutoff,
	).Scan(&rec.ID, &rec.UserID, &rec.Destination, &rec.Theme, &rec.NumDays, &rec.ItineraryData, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to look up cached itinerary", err)
	}
	return &rec, nil
}

// GetByID returns the user's itinerary with the given ID, or a not-found
// error. Ownership is enforced in the query.
func (r *ItineraryRepo) GetByID(ctx context.Context, id, userID string) (*types.ItineraryRecord, error) {
	var rec types.ItineraryRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, destination, theme, num_days, itinerary_data, created_at
		 FROM itineraries
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&rec.ID, &rec.UserID, &rec.Destination, &rec.Theme, &rec.NumDays, &rec.ItineraryData, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundItinerary, "itinerary not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load itinerary", err)
	}
	return &rec, nil
}

// History returns all itineraries for the user, newest first.
func (r *ItineraryRepo) History(ctx context.Context, userID string) ([]types.ItineraryRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, destination, theme, num_days, itinerary_data, created_at
		 FROM itineraries
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query itinerary history", err)
	}
	defer rows.Close()

	var results []types.ItineraryRecord
	for rows.Next() {
		var rec types.ItineraryRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Destination, &rec.Theme, &rec.NumDays, &rec.ItineraryData, &rec.CreatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan itinerary row", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating itinerary rows", err)
	}
	return results, nil
}

// Delete removes the user's itinerary with the given ID. Returns a not-found
// error when the itinerary does not exist or belongs to another user.
func (r *ItineraryRepo) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM itineraries WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete itinerary", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundItinerary, "itinerary not found", nil)
	}
	return nil
}
