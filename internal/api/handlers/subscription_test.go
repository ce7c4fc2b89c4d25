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

	"tripplanner/internal/external"
	"tripplanner/internal/types"
)

type mockPaymentService struct {
	mock.Mock
}

func (m *mockPaymentService) CreateCheckout(ctx context.Context, userID string) (*external.CheckoutSession, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*external.CheckoutSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentService) VerifyAndActivate(ctx context.Context, sessionID string) (*types.Subscription, error) {
	args := m.Called(ctx, sessionID)
	if v := args.Get(0); v != nil {
		return v.(*types.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStatusService struct {
	mock.Mock
}

func (m *mockStatusService) Status(ctx context.Context, userID string) (*types.SubscriptionStatusView, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*types.SubscriptionStatusView), args.Error(1)
	}
	return nil, args.Error(1)
}

func newSubscriptionRouter(payments *mockPaymentService, status *mockStatusService) http.Handler {
	h := NewSubscriptionHandler(payments, status, testValidator(), testLogger())
	return mountRoutes(h.RegisterRoutes)
}

func TestSubscriptionHandler_CreateSession(t *testing.T) {
	payments := new(mockPaymentService)
	status := new(mockStatusService)
	router := newSubscriptionRouter(payments, status)

	payments.On("CreateCheckout", mock.Anything, testUserID).
		Return(&external.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/pay/cs_123"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/subscription/create-session?userid=user_1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "cs_123", data["session_id"])
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", data["checkout_url"])
}

func TestSubscriptionHandler_VerifyPayment(t *testing.T) {
	payments := new(mockPaymentService)
	status := new(mockStatusService)
	router := newSubscriptionRouter(payments, status)

	payments.On("VerifyAndActivate", mock.Anything, "cs_123").
		Return(&types.Subscription{UserID: "user_1", Plan: types.PlanPaid, Status: types.SubStatusActive}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/subscription/verify-payment", strings.NewReader(`{"session_id":"cs_123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "payment verified and plan activated", body["message"])
}

func TestSubscriptionHandler_VerifyPaymentIncomplete(t *testing.T) {
	payments := new(mockPaymentService)
	status := new(mockStatusService)
	router := newSubscriptionRouter(payments, status)

	payments.On("VerifyAndActivate", mock.Anything, "cs_open").
		Return(nil, types.NewAppError(types.ErrCodeValidationPaymentOpen, "payment not completed for this checkout session", nil))

	req := httptest.NewRequest(http.MethodPost, "/v1/subscription/verify-payment", strings.NewReader(`{"session_id":"cs_open"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestSubscriptionHandler_VerifyPaymentMissingSessionID(t *testing.T) {
	payments := new(mockPaymentService)
	status := new(mockStatusService)
	router := newSubscriptionRouter(payments, status)

	req := httptest.NewRequest(http.MethodPost, "/v1/subscription/verify-payment", strings.NewReader(`{"session_id":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payments.AssertNotCalled(t, "VerifyAndActivate")
}

func TestSubscriptionHandler_Status(t *testing.T) {
	payments := new(mockPaymentService)
	status := new(mockStatusService)
	router := newSubscriptionRouter(payments, status)

	status.On("Status", mock.Anything, testUserID).
		Return(&types.SubscriptionStatusView{Plan: "basic", UsageThisMonth: 7}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/subscription/status?userid=user_1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, "basic", data["plan"])
	assert.Equal(t, float64(7), data["usage_this_month"])
}
