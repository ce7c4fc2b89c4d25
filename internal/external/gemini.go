package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tripplanner/internal/types"
)

// geminiAPIBase is the default Gemini API base URL.
// Overridable in tests via GeminiClientConfig.BaseURL.
const geminiAPIBase = "https://generativelanguage.googleapis.com"

// GeminiClientConfig holds the configuration for creating a GeminiHTTPClient.
type GeminiClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Override for testing; defaults to geminiAPIBase
	Logger  *slog.Logger
}

// GeminiHTTPClient implements LLMClient by calling the Gemini generateContent
// REST endpoint through BaseClient. All requests inherit the service's
// resilience infrastructure (circuit breaker, retries, error mapping) and are
// testable with httptest.
type GeminiHTTPClient struct {
	base    *BaseClient
	apiKey  string
	model   string
	baseURL string
	logger  *slog.Logger
}

// NewGeminiClient creates a new GeminiHTTPClient. The httpClient timeout
// should accommodate long generations (itineraries can take a minute or more).
func NewGeminiClient(httpClient *http.Client, cfg GeminiClientConfig) *GeminiHTTPClient {
	base := NewBaseClient(
		httpClient,
		"gemini",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    1 * time.Second,
			MaxWait:    10 * time.Second,
		},
		"TripPlanner/1.0",
	)
	return NewGeminiClientWithBase(base, cfg)
}

// NewGeminiClientWithBase creates a GeminiHTTPClient with a pre-configured
// BaseClient. This is useful for testing when you want to control the
// BaseClient configuration (e.g., disable retries).
func NewGeminiClientWithBase(base *BaseClient, cfg GeminiClientConfig) *GeminiHTTPClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = geminiAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GeminiHTTPClient{
		base:    base,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Generate sends a single-turn prompt to the model and returns the first
// candidate's text.
func (g *GeminiHTTPClient) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode Gemini request", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build Gemini request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.base.Do(req)
	if err != nil {
		if _, ok := err.(*types.AppError); ok {
			return "", err
		}
		return "", types.NewAppError(types.ErrCodeUpstreamLLM, "Gemini request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", types.NewAppError(
			types.ErrCodeUpstreamLLM,
			fmt.Sprintf("Gemini returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			nil,
		)
	}

	var genResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", types.NewAppError(types.ErrCodeUpstreamLLM, "failed to decode Gemini response", err)
	}

	text := genResp.firstText()
	if text == "" {
		return "", types.NewAppError(types.ErrCodeUpstreamLLM, "Gemini returned no candidates", nil)
	}
	return text, nil
}

// ---------------------------------------------------------------------------
// Wire Types
// ---------------------------------------------------------------------------

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// firstText returns the text of the first candidate's first part, or "".
func (r *geminiResponse) firstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
