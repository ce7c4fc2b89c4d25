package core

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"tripplanner/internal/types"
)

// quotaDenialRecorder is satisfied by collectors that track paywall denials
// in addition to the base request metrics.
type quotaDenialRecorder interface {
	RecordQuotaDenied(ctx context.Context, endpoint string)
}

// userIDPayload is the minimal shape peeked from request bodies to identify
// the calling user before the handler decodes the full payload.
type userIDPayload struct {
	UserID string `json:"userid"`
}

// PaywallMiddleware meters POST requests through the quota gate. The user is
// identified from the "userid" query parameter or, failing that, from the
// "userid" field of a JSON body. The body is restored for the downstream
// handler.
//
// Quota is charged before the wrapped handler runs and is not refunded if the
// handler later fails. A denied request receives a 429 envelope carrying the
// gate's denial message. On admission the user ID is injected into the
// request context.
func (s *Server) PaywallMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.extractUserID(w, r)
		if err != nil {
			Error(w, r, err)
			return
		}

		decision, err := s.Quota.Authorize(r.Context(), userID)
		if err != nil {
			s.Logger.ErrorContext(r.Context(), "quota authorization failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			Error(w, r, err)
			return
		}

		if !decision.Allowed {
			if qm, ok := s.Metrics.(quotaDenialRecorder); ok {
				qm.RecordQuotaDenied(r.Context(), r.URL.Path)
			}
			JSON(w, r, http.StatusTooManyRequests, APIResponse{
				Success: false,
				Message: decision.Reason,
			})
			return
		}

		ctx := types.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityMiddleware resolves the calling user without charging quota. Used
// on unmetered routes (GET, DELETE, subscription endpoints) that still need
// to know who is calling.
func (s *Server) IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.extractUserID(w, r)
		if err != nil {
			Error(w, r, err)
			return
		}

		ctx := types.WithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractUserID resolves the calling user from the query string or a JSON
// body. When the body is consumed for the peek, it is replaced so downstream
// decoding sees the original bytes.
func (s *Server) extractUserID(w http.ResponseWriter, r *http.Request) (string, error) {
	if userID := r.URL.Query().Get("userid"); userID != "" {
		return userID, nil
	}

	if r.Body != nil && r.Method != http.MethodGet {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
		if err != nil {
			return "", mapDecodeError(err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var payload userIDPayload
		// Decode errors are deferred to the handler's strict decode; the
		// peek only cares whether a userid is present.
		if err := json.Unmarshal(body, &payload); err == nil && payload.UserID != "" {
			return payload.UserID, nil
		}
	}

	return "", types.NewAppError(
		types.ErrCodeValidationMissingUser,
		"userid is required",
		nil,
	)
}
