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

// FlightsRepo provides data access for the flight_searches table. Parsed
// options are stored as JSONB for querying; the raw provider payload is kept
// alongside, zstd-compressed, for later reprocessing.
type FlightsRepo struct {
	db    DBTX
	codec *payloadCodec
}

// NewFlightsRepo creates a new FlightsRepo backed by the given database
// connection (pool or transaction).
func NewFlightsRepo(db DBTX) *FlightsRepo {
	return &FlightsRepo{db: db, codec: newPayloadCodec()}
}

// Save persists a flight search with its parsed options and the raw provider
// payload, and returns the stored record.
func (r *FlightsRepo) Save(ctx context.Context, req *types.FlightSearchRequest, flights []types.FlightOption, rawPayload []byte, now time.Time) (*types.FlightSearchRecord, error) {
	rec := &types.FlightSearchRecord{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Source:        req.Source,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		Flights:       flights,
		CreatedAt:     now,
	}

	flightsJSON, err := json.Marshal(flights)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode flight options", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO flight_searches
		   (id, user_id, source, destination, departure_date, return_date, flights, raw_response, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)`,
		rec.ID, rec.UserID, rec.Source, rec.Destination, rec.DepartureDate, rec.ReturnDate,
		flightsJSON, r.codec.Compress(rawPayload), rec.CreatedAt,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to save flight search", err)
	}
	return rec, nil
}

// FindRecent returns the newest search for the same route and dates created
// at or after cutoff, regardless of which user ran it. Returns nil when no
// fresh search exists.
func (r *FlightsRepo) FindRecent(ctx context.Context, source, destination, departureDate, returnDate string, cutoff time.Time) (*types.FlightSearchRecord, error) {
	var (
		rec         types.FlightSearchRecord
		flightsJSON []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, source, destination, departure_date, return_date, flights, created_at
		 FROM flight_searches
		 WHERE source = $1 AND destination = $2 AND departure_date = $3 AND return_date = $4
		   AND created_at >= $5
		 ORDER BY created_at DESC
		 LIMIT 1`,
		source, destination, departureDate, returnDate, cutoff,
	).Scan(&rec.ID, &rec.UserID, &rec.Source, &rec.Destination, &rec.DepartureDate, &rec.ReturnDate, &flightsJSON, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to look up cached flight search", err)
	}

	if err := json.Unmarshal(flightsJSON, &rec.Flights); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to decode stored flight options", err)
	}
	return &rec, nil
}

// RawPayload returns the decompressed raw provider payload for a stored
// search. Returns nil when no payload was stored.
func (r *FlightsRepo) RawPayload(ctx context.Context, id string) ([]byte, error) {
	var compressed []byte
	err := r.db.QueryRow(ctx,
		`SELECT raw_response FROM flight_searches WHERE id = $1`,
		id,
	).Scan(&compressed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load raw flight payload", err)
	}

	raw, err := r.codec.Decompress(compressed)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to decompress raw flight payload", err)
	}
	return raw, nil
}
