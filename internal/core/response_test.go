package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/config"
	"tripplanner/internal/types"
)

// stubQuota is a QuotaAuthorizer with a canned decision.
type stubQuota struct {
	decision types.Decision
	err      error
	calls    int
	lastUser string
}

func (q *stubQuota) Authorize(ctx context.Context, userID string) (types.Decision, error) {
	q.calls++
	q.lastUser = userID
	return q.decision, q.err
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "local",
		Service:     "tripplanner-api",
	}
}

func newTestServer(t *testing.T, quota QuotaAuthorizer) *Server {
	t.Helper()
	if quota == nil {
		quota = &stubQuota{decision: types.Decision{Allowed: true}}
	}
	s, err := NewServer(testConfig(), quota, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespond_SuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/subscription/status", nil)

	Respond(rec, req, http.StatusOK, "ok", map[string]any{"plan": "basic"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["message"])
	assert.Equal(t, map[string]any{"plan": "basic"}, body["data"])
}

func TestError_AppErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			"quota exceeded maps to 429",
			types.NewAppError(types.ErrCodeQuotaExceeded, "Free plan limit reached (15 POST calls/month). Please upgrade.", nil),
			http.StatusTooManyRequests,
			"Free plan limit reached (15 POST calls/month). Please upgrade.",
		},
		{
			"not found maps to 404",
			types.NewAppError(types.ErrCodeNotFoundItinerary, "itinerary not found", nil),
			http.StatusNotFound,
			"itinerary not found",
		},
		{
			"upstream maps to 502",
			types.NewAppError(types.ErrCodeUpstreamLLM, "model unavailable", nil),
			http.StatusBadGateway,
			"model unavailable",
		},
		{
			"generic error maps to 500 without leaking",
			errors.New("pq: connection refused"),
			http.StatusInternalServerError,
			"an unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/research/destination", nil)

			Error(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Nil(t, body["data"])
		})
	}
}

func TestError_DataFieldIsExplicitNull(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/research/destination", nil)

	Error(rec, req, types.NewAppError(types.ErrCodeQuotaExceeded, "limit reached", nil))

	assert.Contains(t, rec.Body.String(), `"data":null`)
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		UserID string `json:"userid"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid object", `{"userid":"user_1"}`, false},
		{"unknown field", `{"userid":"user_1","extra":true}`, true},
		{"empty body", ``, true},
		{"malformed", `{"userid":`, true},
		{"trailing second value", `{"userid":"user_1"}{"again":true}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/research/destination", strings.NewReader(tt.body))

			var dst payload
			err := DecodeJSON(rec, req, &dst)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "user_1", dst.UserID)
				return
			}

			var appErr *types.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, types.ErrCodeValidationInvalidRequest, appErr.Code)
		})
	}
}
