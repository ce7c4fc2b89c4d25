package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tripplanner/internal/types"
)

// PlacesRepo provides data access for the place_searches table, which stores
// combined hotel and restaurant search results as JSONB.
type PlacesRepo struct {
	db DBTX
}

// NewPlacesRepo creates a new PlacesRepo backed by the given database
// connection (pool or transaction).
func NewPlacesRepo(db DBTX) *PlacesRepo {
	return &PlacesRepo{db: db}
}

// Save persists a place search and returns the stored record.
func (r *PlacesRepo) Save(ctx context.Context, req *types.PlacesSearchRequest, result *types.PlacesResult, now time.Time) (*types.PlacesRecord, error) {
	rec := &types.PlacesRecord{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Destination: req.Destination,
		Theme:       req.Theme,
		Result:      *result,
		CreatedAt:   now,
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode place results", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO place_searches (id, user_id, destination, theme, result, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		rec.ID, rec.UserID, rec.Destination, rec.Theme, resultJSON, rec.CreatedAt,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to save place search", err)
	}
	return rec, nil
}

// FindRecent returns the newest place search for the destination and theme
// created at or after cutoff. Returns nil when no fresh search exists.
func (r *PlacesRepo) FindRecent(ctx context.Context, destination, theme string, cutoff time.Time) (*types.PlacesRecord, error) {
	var (
		rec        types.PlacesRecord
		resultJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, destination, theme, result, created_at
		 FROM place_searches
		 WHERE destination = $1 AND theme = $2 AND created_at >= $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		destination, theme, cutoff,
	).Scan(&rec.ID, &rec.UserID, &rec.Destination, &rec.Theme, &resultJSON, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to look up cached place search", err)
	}

	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to decode stored place results", err)
	}
	return &rec, nil
}
