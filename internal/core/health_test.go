package core

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProbe struct {
	name string
	err  error
}

func (p stubProbe) Name() string                    { return p.name }
func (p stubProbe) Check(ctx context.Context) error { return p.err }

func TestHandleRoot_Banner(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.HandleRoot(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"tripplanner-api"`)
	assert.Contains(t, rec.Body.String(), `"environment":"local"`)
}

func TestHandleHealth_NoProbes(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	s := newTestServer(t, nil)
	s.HealthProbes = []HealthProbe{stubProbe{name: "database"}}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.HandleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":{"status":"healthy"}`)
}

func TestHandleHealth_UnhealthyProbe(t *testing.T) {
	s := newTestServer(t, nil)
	s.HealthProbes = []HealthProbe{
		stubProbe{name: "database", err: errors.New("connection refused")},
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.HandleHealth(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
