package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return r.scanErr
}

// --- PlanRepo Tests ---

func TestPlanRepo_GetSubscription_NoRowMeansFree(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	sub, err := repo.GetSubscription(context.Background(), "user_1")
	require.NoError(t, err)

	assert.Equal(t, "user_1", sub.UserID)
	assert.Equal(t, types.PlanFree, sub.Plan)
	assert.Equal(t, types.SubStatusActive, sub.Status)
	assert.Nil(t, sub.EndDate)
}

func TestPlanRepo_GetSubscription_StoredPaidRow(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 30)

	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*string) = "user_1"
			*dest[1].(*types.Plan) = types.PlanPaid
			*dest[2].(*types.SubscriptionStatus) = types.SubStatusActive
			*dest[3].(**time.Time) = &start
			*dest[4].(**time.Time) = &end
			*dest[5].(*string) = "pi_123"
			*dest[6].(*string) = "cs_123"
			*dest[7].(**time.Time) = &start
			return nil
		}})

	sub, err := repo.GetSubscription(context.Background(), "user_1")
	require.NoError(t, err)

	assert.Equal(t, types.PlanPaid, sub.Plan)
	assert.Equal(t, "pi_123", sub.ProviderPaymentRef)
	assert.Equal(t, types.StatusPaidActive, sub.Effective(start.AddDate(0, 0, 10)))
	assert.Equal(t, types.StatusPaidExpired, sub.Effective(end.AddDate(0, 0, 1)))
}

func TestPlanRepo_GetSubscription_DBError(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	sub, err := repo.GetSubscription(context.Background(), "user_1")
	require.Error(t, err)
	assert.Nil(t, sub)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestPlanRepo_ActivatePaid_AppliesUpsertAndRereads(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 30)

	dbtx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)
	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*string) = "user_1"
			*dest[1].(*types.Plan) = types.PlanPaid
			*dest[2].(*types.SubscriptionStatus) = types.SubStatusActive
			*dest[3].(**time.Time) = &now
			*dest[4].(**time.Time) = &end
			*dest[5].(*string) = "pi_123"
			*dest[6].(*string) = "cs_123"
			*dest[7].(**time.Time) = &now
			return nil
		}})

	sub, err := repo.ActivatePaid(context.Background(), "user_1", "pi_123", "cs_123", now, end, now)
	require.NoError(t, err)

	assert.Equal(t, types.PlanPaid, sub.Plan)
	assert.Equal(t, end, *sub.EndDate)
	dbtx.AssertExpectations(t)
}

func TestPlanRepo_ActivatePaid_DuplicatePaymentIsNoOp(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	origStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	origEnd := origStart.AddDate(0, 0, 30)
	later := origStart.AddDate(0, 0, 5)

	// RowsAffected 0: the stored provider_payment_ref matched.
	dbtx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 0"), nil)
	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFn: func(dest ...any) error {
			*dest[0].(*string) = "user_1"
			*dest[1].(*types.Plan) = types.PlanPaid
			*dest[2].(*types.SubscriptionStatus) = types.SubStatusActive
			*dest[3].(**time.Time) = &origStart
			*dest[4].(**time.Time) = &origEnd
			*dest[5].(*string) = "pi_123"
			*dest[6].(*string) = "cs_123"
			*dest[7].(**time.Time) = &origStart
			return nil
		}})

	sub, err := repo.ActivatePaid(context.Background(), "user_1", "pi_123", "cs_123", later, later.AddDate(0, 0, 30), later)
	require.NoError(t, err)

	// The original window stands; re-verification did not extend it.
	assert.Equal(t, origEnd, *sub.EndDate)
}

func TestPlanRepo_ActivatePaid_ExecError(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	now := time.Now().UTC()
	dbtx.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	sub, err := repo.ActivatePaid(context.Background(), "user_1", "pi_123", "cs_123", now, now.AddDate(0, 0, 30), now)
	require.Error(t, err)
	assert.Nil(t, sub)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
