package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/types"
)

type mockResearchService struct {
	mock.Mock
}

func (m *mockResearchService) Research(ctx context.Context, req *types.ResearchRequest) (*types.ResearchRecord, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*types.ResearchRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResearchService) History(ctx context.Context, userID, destination string) ([]types.ResearchRecord, error) {
	args := m.Called(ctx, userID, destination)
	if v := args.Get(0); v != nil {
		return v.([]types.ResearchRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

const researchBody = `{
	"userid": "spoofed_user",
	"destination": "Kyoto",
	"theme": "Cultural",
	"activities": "temples",
	"num_days": 5,
	"budget": "Standard",
	"flight_class": "Economy",
	"hotel_rating": "4-star",
	"visa_required": false,
	"insurance_required": false
}`

func TestResearchHandler_Research(t *testing.T) {
	svc := new(mockResearchService)
	router := mountRoutes(NewResearchHandler(svc, testValidator(), testLogger()).RegisterRoutes)

	svc.On("Research", mock.Anything, mock.MatchedBy(func(req *types.ResearchRequest) bool {
		// Context identity overrides the body's userid claim.
		return req.UserID == testUserID && req.Destination == "Kyoto"
	})).Return(&types.ResearchRecord{ID: "r_1", Destination: "Kyoto"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/research/destination", strings.NewReader(researchBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "destination research completed", body["message"])
	assert.Equal(t, "r_1", body["data"].(map[string]any)["id"])
}

func TestResearchHandler_CachedResultNotedInMessage(t *testing.T) {
	svc := new(mockResearchService)
	router := mountRoutes(NewResearchHandler(svc, testValidator(), testLogger()).RegisterRoutes)

	svc.On("Research", mock.Anything, mock.Anything).
		Return(&types.ResearchRecord{ID: "r_1", Destination: "Kyoto", Cached: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/research/destination", strings.NewReader(researchBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "destination research completed (cached)", body["message"])
}

func TestResearchHandler_ValidationFailure(t *testing.T) {
	svc := new(mockResearchService)
	router := mountRoutes(NewResearchHandler(svc, testValidator(), testLogger()).RegisterRoutes)

	invalid := strings.Replace(researchBody, `"num_days": 5`, `"num_days": 90`, 1)
	req := httptest.NewRequest(http.MethodPost, "/v1/research/destination", strings.NewReader(invalid))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Research")
}

func TestResearchHandler_UpstreamErrorMapsTo502(t *testing.T) {
	svc := new(mockResearchService)
	router := mountRoutes(NewResearchHandler(svc, testValidator(), testLogger()).RegisterRoutes)

	svc.On("Research", mock.Anything, mock.Anything).
		Return(nil, types.NewAppError(types.ErrCodeUpstreamLLM, "model unavailable", nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/research/destination", strings.NewReader(researchBody))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "model unavailable", body["message"])
}

func TestResearchHandler_History(t *testing.T) {
	svc := new(mockResearchService)
	router := mountRoutes(NewResearchHandler(svc, testValidator(), testLogger()).RegisterRoutes)

	svc.On("History", mock.Anything, testUserID, "Kyoto").
		Return([]types.ResearchRecord{{ID: "r_1"}, {ID: "r_2"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/research/Kyoto/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Len(t, body["data"], 2)
}
