package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"tripplanner/internal/types"
)

// maxRequestBodySize is the maximum allowed size of a request body (1 MB).
const maxRequestBodySize = 1 << 20 // 1 MB

// APIResponse is the envelope for every API response, success or failure.
// Data is an explicit null on failures so clients can rely on the field
// always being present.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// JSON writes a JSON response with the given status code and body.
// If marshalling fails, it falls back to a 500 error envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = writeEnvelope(w, APIResponse{Success: false, Message: "failed to marshal response"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// Respond writes a success envelope with the given status, message, and data.
func Respond(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	JSON(w, r, status, APIResponse{Success: true, Message: message, Data: data})
}

// Error writes an error envelope to the client. It inspects the error chain:
//   - If the error is (or wraps) a *types.AppError, its code determines the
//     HTTP status and its message becomes the envelope message.
//   - Any other error returns a 500 with a safe generic message.
//
// Wrapped internal errors are never exposed to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		JSON(w, r, appErr.HTTPStatus(), APIResponse{Success: false, Message: appErr.Message})
		return
	}

	JSON(w, r, http.StatusInternalServerError, APIResponse{Success: false, Message: "an unexpected error occurred"})
}

// DecodeJSON reads the request body into dst, enforcing:
//   - A maximum body size of 1 MB.
//   - DisallowUnknownFields to keep request contracts strict.
//
// It returns a *types.AppError with code "validation_invalid_request" (400)
// on syntax errors, unknown fields, oversized bodies, empty bodies, and
// bodies containing more than one JSON value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}

	if dec.More() {
		return types.NewAppError(
			types.ErrCodeValidationInvalidRequest,
			"request body must contain a single JSON object",
			nil,
		)
	}

	return nil
}

// mapDecodeError translates a json.Decoder error into a structured AppError.
func mapDecodeError(err error) *types.AppError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return types.NewAppError(
			types.ErrCodeValidationInvalidRequest,
			"request body must not exceed 1MB",
			err,
		)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return types.NewAppError(
			types.ErrCodeValidationInvalidRequest,
			"malformed JSON in request body",
			err,
		)
	}

	var unmarshalTypeErr *json.UnmarshalTypeError
	if errors.As(err, &unmarshalTypeErr) {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidRequest,
			"invalid value for field",
			err,
			map[string]any{
				"field":    unmarshalTypeErr.Field,
				"expected": unmarshalTypeErr.Type.String(),
			},
		)
	}

	if strings.HasPrefix(err.Error(), "json: unknown field") {
		return types.NewAppError(
			types.ErrCodeValidationInvalidRequest,
			"unknown field in request body: "+strings.TrimPrefix(err.Error(), "json: unknown field "),
			err,
		)
	}

	if errors.Is(err, io.EOF) {
		return types.NewAppError(
			types.ErrCodeValidationInvalidRequest,
			"request body must not be empty",
			err,
		)
	}

	return types.NewAppError(
		types.ErrCodeValidationInvalidRequest,
		"invalid JSON in request body",
		err,
	)
}

// writeEnvelope is a minimal encoder used inside panic recovery and marshal
// fallbacks, where another json.Marshal failure must not be possible. The
// envelope fields are known-safe strings formatted manually.
func writeEnvelope(w http.ResponseWriter, resp APIResponse) error {
	_, err := w.Write([]byte(`{"success":false,"message":"` + escapeJSON(resp.Message) + `","data":null}`))
	return err
}

// escapeJSON performs minimal JSON string escaping for strings we control.
func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\r", `\r`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return s
}
