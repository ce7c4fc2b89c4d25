package core

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/types"
)

func TestValidator_ValidResearchRequest(t *testing.T) {
	v := NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := &types.ResearchRequest{
		UserID:      "user_1",
		Destination: "Kyoto",
		Theme:       "Cultural",
		Activities:  "temples",
		NumDays:     5,
		Budget:      types.BudgetStandard,
		FlightClass: types.FlightEconomy,
		HotelRating: types.HotelFourStar,
	}

	assert.NoError(t, v.ValidateStruct(req))
}

func TestValidator_FailuresKeyedByJSONName(t *testing.T) {
	v := NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req := &types.ResearchRequest{
		UserID:      "user_1",
		Destination: "Kyoto",
		Theme:       "Cultural",
		Activities:  "temples",
		NumDays:     45,
		Budget:      "Lavish",
		FlightClass: types.FlightEconomy,
		HotelRating: types.HotelFourStar,
	}

	err := v.ValidateStruct(req)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidRequest, appErr.Code)
	assert.Contains(t, appErr.Details, "num_days")
	assert.Contains(t, appErr.Details, "budget")
}

func TestValidator_FlightSearchShapes(t *testing.T) {
	v := NewValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name    string
		mutate  func(*types.FlightSearchRequest)
		wantKey string
	}{
		{"bad airport code", func(r *types.FlightSearchRequest) { r.Source = "NEWYORK" }, "source"},
		{"numeric airport code", func(r *types.FlightSearchRequest) { r.Destination = "123" }, "destination"},
		{"bad date format", func(r *types.FlightSearchRequest) { r.DepartureDate = "10/09/2026" }, "departure_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &types.FlightSearchRequest{
				UserID:        "user_1",
				Source:        "JFK",
				Destination:   "NRT",
				DepartureDate: "2026-09-10",
				ReturnDate:    "2026-09-20",
			}
			tt.mutate(req)

			err := v.ValidateStruct(req)
			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Contains(t, appErr.Details, tt.wantKey)
		})
	}
}
