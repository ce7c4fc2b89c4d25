package travel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/types"
)

type mockFlightStore struct {
	mock.Mock
}

func (m *mockFlightStore) Save(ctx context.Context, req *types.FlightSearchRequest, flights []types.FlightOption, rawPayload []byte, now time.Time) (*types.FlightSearchRecord, error) {
	args := m.Called(ctx, req, flights, rawPayload, now)
	if v := args.Get(0); v != nil {
		return v.(*types.FlightSearchRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFlightStore) FindRecent(ctx context.Context, source, destination, departureDate, returnDate string, cutoff time.Time) (*types.FlightSearchRecord, error) {
	args := m.Called(ctx, source, destination, departureDate, returnDate, cutoff)
	if v := args.Get(0); v != nil {
		return v.(*types.FlightSearchRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func flightRequest() *types.FlightSearchRequest {
	return &types.FlightSearchRequest{
		UserID:        "user_1",
		Source:        "JFK",
		Destination:   "NRT",
		DepartureDate: "2026-09-10",
		ReturnDate:    "2026-09-20",
	}
}

func newTestFlightService(store *mockFlightStore, search *mockSearch, ttl time.Duration) *FlightService {
	return NewFlightService(store, search, ttl, nil).WithClock(func() time.Time { return fixedNow })
}

func TestFlightService_CacheHitSkipsProvider(t *testing.T) {
	store := new(mockFlightStore)
	search := new(mockSearch)
	svc := newTestFlightService(store, search, 2*time.Hour)

	cached := &types.FlightSearchRecord{ID: "f_1"}
	store.On("FindRecent", mock.Anything, "JFK", "NRT", "2026-09-10", "2026-09-20", fixedNow.Add(-2*time.Hour)).
		Return(cached, nil)

	rec, err := svc.Search(context.Background(), flightRequest())
	require.NoError(t, err)
	assert.Equal(t, "f_1", rec.ID)
	assert.True(t, rec.Cached)
	search.AssertNotCalled(t, "SearchFlights")
}

func TestFlightService_CacheMissSearchesAndSaves(t *testing.T) {
	store := new(mockFlightStore)
	search := new(mockSearch)
	svc := newTestFlightService(store, search, 2*time.Hour)

	req := flightRequest()
	options := []types.FlightOption{{Airline: "ANA", Price: "$850"}}
	raw := []byte(`{"best_flights":[]}`)

	store.On("FindRecent", mock.Anything, "JFK", "NRT", "2026-09-10", "2026-09-20", mock.Anything).Return(nil, nil)
	search.On("SearchFlights", mock.Anything, "JFK", "NRT", "2026-09-10", "2026-09-20").Return(options, raw, nil)
	store.On("Save", mock.Anything, req, options, raw, fixedNow).
		Return(&types.FlightSearchRecord{ID: "f_2", Flights: options}, nil)

	rec, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "f_2", rec.ID)
	store.AssertExpectations(t)
}

func TestFlightService_DateValidation(t *testing.T) {
	tests := []struct {
		name          string
		departureDate string
		returnDate    string
	}{
		{"departure in the past", "2026-08-01", "2026-09-01"},
		{"return before departure", "2026-09-20", "2026-09-10"},
		{"malformed departure", "10-09-2026", "2026-09-20"},
		{"malformed return", "2026-09-10", "next friday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mockFlightStore)
			search := new(mockSearch)
			svc := newTestFlightService(store, search, 2*time.Hour)

			req := flightRequest()
			req.DepartureDate = tt.departureDate
			req.ReturnDate = tt.returnDate

			_, err := svc.Search(context.Background(), req)
			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, types.ErrCodeValidationDateRange, appErr.Code)
			search.AssertNotCalled(t, "SearchFlights")
			store.AssertNotCalled(t, "FindRecent")
		})
	}
}

func TestFlightService_SameDayDepartureAllowed(t *testing.T) {
	store := new(mockFlightStore)
	search := new(mockSearch)
	svc := newTestFlightService(store, search, 0)

	req := flightRequest()
	req.DepartureDate = fixedNow.Format(dateLayout)
	req.ReturnDate = fixedNow.Format(dateLayout)

	search.On("SearchFlights", mock.Anything, "JFK", "NRT", req.DepartureDate, req.ReturnDate).
		Return([]types.FlightOption{}, []byte("{}"), nil)
	store.On("Save", mock.Anything, req, mock.Anything, mock.Anything, fixedNow).
		Return(&types.FlightSearchRecord{ID: "f_3"}, nil)

	_, err := svc.Search(context.Background(), req)
	require.NoError(t, err)
}

func TestFlightService_ProviderErrorPropagates(t *testing.T) {
	store := new(mockFlightStore)
	search := new(mockSearch)
	svc := newTestFlightService(store, search, 2*time.Hour)

	store.On("FindRecent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	search.On("SearchFlights", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil, types.NewAppError(types.ErrCodeUpstreamSearch, "provider unavailable", nil))

	_, err := svc.Search(context.Background(), flightRequest())
	require.Error(t, err)
	store.AssertNotCalled(t, "Save")
}
