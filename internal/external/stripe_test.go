package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/types"
)

// noRetryBase returns a BaseClient that never sleeps and never retries, so
// tests stay fast and deterministic.
func noRetryBase(t *testing.T) *BaseClient {
	t.Helper()
	return NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		"test-"+t.Name(),
		RetryPolicy{MaxRetries: 0, MinWait: time.Millisecond, MaxWait: time.Millisecond},
		"TripPlanner-Test/1.0",
		WithSleepFunc(func(time.Duration) {}),
	)
}

func newTestStripeClient(t *testing.T, handler http.HandlerFunc) (*StripeClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewStripeClientWithBase(noRetryBase(t), StripeClientConfig{
		SecretKey:   "sk_test_123",
		BaseURL:     srv.URL,
		ProductName: "AI Travel Planner Pro",
		AmountCents: 1000,
		Currency:    "usd",
	})
	return client, srv
}

func TestStripeClient_CreateCheckoutSession(t *testing.T) {
	client, _ := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "user_1", r.PostForm.Get("client_reference_id"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "1000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_123","url":"https://checkout.stripe.com/pay/cs_123","status":"open","payment_status":"unpaid","client_reference_id":"user_1"}`))
	})

	sess, err := client.CreateCheckoutSession(context.Background(), "user_1",
		"https://app.example.com/success", "https://app.example.com/cancel")
	require.NoError(t, err)

	assert.Equal(t, "cs_123", sess.ID)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", sess.URL)
	assert.False(t, sess.Paid())
}

func TestStripeClient_GetCheckoutSession_Paid(t *testing.T) {
	client, _ := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_123","status":"complete","payment_status":"paid","payment_intent":"pi_456","client_reference_id":"user_1"}`))
	})

	sess, err := client.GetCheckoutSession(context.Background(), "cs_123")
	require.NoError(t, err)

	assert.True(t, sess.Paid())
	assert.Equal(t, "pi_456", sess.PaymentIntent)
	assert.Equal(t, "user_1", sess.ClientRef)
}

func TestStripeClient_GetCheckoutSession_NotFound(t *testing.T) {
	client, _ := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such checkout session"}}`))
	})

	sess, err := client.GetCheckoutSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Nil(t, sess)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundSession, appErr.Code)
}

func TestStripeClient_CreateCheckoutSession_APIError(t *testing.T) {
	client, _ := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Missing required param"}}`))
	})

	sess, err := client.CreateCheckoutSession(context.Background(), "user_1", "https://x/s", "https://x/c")
	require.Error(t, err)
	assert.Nil(t, sess)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamPayment, appErr.Code)
	assert.Contains(t, appErr.Message, "Missing required param")
}

func TestStripeClient_ServerErrorAfterRetries(t *testing.T) {
	client, _ := newTestStripeClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetCheckoutSession(context.Background(), "cs_123")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamUnavailable, appErr.Code)
}
