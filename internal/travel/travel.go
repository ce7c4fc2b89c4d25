// Package travel implements the trip planning services: destination
// research, itinerary generation, flight search, and hotel/restaurant
// lookup. Services are cache-first: a sufficiently fresh stored result is
// served instead of a new provider call, which keeps latency and provider
// spend down without changing response shapes.
package travel

import (
	"context"
	"time"

	"tripplanner/internal/types"
)

// ResearchStore is the persistence the research service needs.
// Implemented by db.ResearchRepo.
type ResearchStore interface {
	Save(ctx context.Context, req *types.ResearchRequest, researchData string, now time.Time) (*types.ResearchRecord, error)
	FindRecent(ctx context.Context, destination, theme string, numDays int, cutoff time.Time) (*types.ResearchRecord, error)
	History(ctx context.Context, userID, destination string) ([]types.ResearchRecord, error)
}

// ItineraryStore is the persistence the itinerary service needs.
// Implemented by db.ItineraryRepo.
type ItineraryStore interface {
	Save(ctx context.Context, req *types.ItineraryRequest, itineraryData string, now time.Time) (*types.ItineraryRecord, error)
	FindRecent(ctx context.Context, userID, destination, theme string, numDays int, cutoff time.Time) (*types.ItineraryRecord, error)
	GetByID(ctx context.Context, id, userID string) (*types.ItineraryRecord, error)
	History(ctx context.Context, userID string) ([]types.ItineraryRecord, error)
	Delete(ctx context.Context, id, userID string) error
}

// FlightStore is the persistence the flight service needs.
// Implemented by db.FlightsRepo.
type FlightStore interface {
	Save(ctx context.Context, req *types.FlightSearchRequest, flights []types.FlightOption, rawPayload []byte, now time.Time) (*types.FlightSearchRecord, error)
	FindRecent(ctx context.Context, source, destination, departureDate, returnDate string, cutoff time.Time) (*types.FlightSearchRecord, error)
}

// PlaceStore is the persistence the places service needs.
// Implemented by db.PlacesRepo.
type PlaceStore interface {
	Save(ctx context.Context, req *types.PlacesSearchRequest, result *types.PlacesResult, now time.Time) (*types.PlacesRecord, error)
	FindRecent(ctx context.Context, destination, theme string, cutoff time.Time) (*types.PlacesRecord, error)
}
