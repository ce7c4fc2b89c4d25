package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tripplanner/internal/types"
)

// ResearchRepo provides data access for the research_results table, which
// stores destination research output for history views and cache-first reuse.
type ResearchRepo struct {
	db DBTX
}

// NewResearchRepo creates a new ResearchRepo backed by the given database
// connection (pool or transaction).
func NewResearchRepo(db DBTX) *ResearchRepo {
	return &ResearchRepo{db: db}
}

// Save persists a completed research run and returns the stored record.
func (r *ResearchRepo) Save(ctx context.Context, req *types.ResearchRequest, researchData string, now time.Time) (*types.ResearchRecord, error) {
	rec := &types.ResearchRecord{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Destination:  req.Destination,
		Theme:        req.Theme,
		Activities:   req.Activities,
		NumDays:      req.NumDays,
		Budget:       req.Budget,
		ResearchData: researchData,
		CreatedAt:    now,
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO research_results
		   (id, user_id, destination, theme, activities, num_days, budget, research_data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.UserID, rec.Destination, rec.Theme, rec.Activities,
		rec.NumDays, rec.Budget, rec.ResearchData, rec.CreatedAt,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to save research result", err)
	}
	return rec, nil
}

// FindRecent returns the newest research result matching the destination,
// theme and trip length, created at or after cutoff. Returns nil when no
// fresh result exists.
func (r *ResearchRepo) FindRecent(ctx context.Context, destination, theme string, numDays int, cutoff time.Time) (*types.ResearchRecord, error) {
	var rec types.ResearchRecord
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, destination, theme, activities, num_days, budget, research_data, created_at
		 FROM research_results
		 WHERE destination = $1 AND theme = $2 AND num_days = $3 AND created_at >= $4
		 ORDER BY created_at DESC
		 LIMIT 1`,
		destination, theme, numDays, cutoff,
	).Scan(
		&rec.ID, &rec.UserID, &rec.Destination, &rec.Theme, &rec.Activities,
		&rec.NumDays, &rec.Budget, &rec.ResearchData, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to look up cached research", err)
	}
	return &rec, nil
}

// History returns the user's research results for a destination, newest first.
func (r *ResearchRepo) History(ctx context.Context, userID, destination string) ([]types.ResearchRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, destination, theme, activities, num_days, budget, research_data, created_at
		 FROM research_results
		 WHERE user_id = $1 AND destination = $2
		 ORDER BY created_at DESC`,
		userID, destination,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query research history", err)
	}
	defer rows.Close()

	var results []types.ResearchRecord
	for rows.Next() {
		var rec types.ResearchRecord
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Destination, &rec.Theme, &rec.Activities,
			&rec.NumDays, &rec.Budget, &rec.ResearchData, &rec.CreatedAt,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan research history row", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating research history rows", err)
	}
	return results, nil
}
