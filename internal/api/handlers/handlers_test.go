package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/core"
	"tripplanner/internal/types"
)

// testUserID is injected by the stub middleware in place of the real paywall.
const testUserID = "user_1"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testValidator() *core.Validator {
	return core.NewValidator(testLogger())
}

// stubIdentity stands in for both the paywall and identity middleware,
// injecting a fixed user into the request context.
func stubIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(types.WithUserID(r.Context(), testUserID)))
	})
}

// mountRoutes mounts a handler's routes on a fresh router with stub
// middleware, mirroring how main wires registrars under /v1.
func mountRoutes(register func(r chi.Router, paywall, identity func(http.Handler) http.Handler)) *chi.Mux {
	router := chi.NewRouter()
	router.Route("/v1", func(r chi.Router) {
		register(r, stubIdentity, stubIdentity)
	})
	return router
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
