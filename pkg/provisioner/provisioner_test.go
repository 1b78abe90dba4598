package provisioner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/locker"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/policy"
	"github.com/chris/funding-ledger/pkg/provisioner/mocks"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/chris/funding-ledger/pkg/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opening string) (*memory.Store, *coordinator.Coordinator) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	_, err := store.CreateAccount(ctx, &models.Account{ID: "owner"})
	require.NoError(t, err)

	pol, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)
	c := coordinator.New(store, pol, locker.NewLocal(time.Second), nil)
	if opening != "" {
		_, err = c.TopUpCredit(ctx, "owner", decimal.RequireFromString(opening), "opening")
		require.NoError(t, err)
	}
	return store, c
}

func feeRequest(key string) models.OperationRequest {
	return models.OperationRequest{AccountID: "owner", Kind: models.PROJECT_FEE, IdempotencyKey: key}
}

func TestProvision(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		store, c := setup(t, "15000")
		p := New(c)

		var seen *models.TransactionRecord
		fee, err := p.Provision(ctx, feeRequest(""), func(ctx context.Context, fee *models.TransactionRecord) error {
			seen = fee
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, fee, seen)
		assert.Equal(t, "5000", fee.BalanceAfter.String())

		bal, err := store.GetBalance(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, "5000", bal.String())
	})

	t.Run("Insufficient funds never calls create", func(t *testing.T) {
		_, c := setup(t, "100")
		p := New(c)

		_, err := p.Provision(ctx, feeRequest(""), func(ctx context.Context, fee *models.TransactionRecord) error {
			t.Fatal("create must not run without a committed fee")
			return nil
		})
		assert.ErrorIs(t, err, coordinator.ErrInsufficientFunds)
	})

	t.Run("Failed creation is refunded", func(t *testing.T) {
		store, c := setup(t, "15000")
		p := New(c)
		boom := errors.New("disk full")

		var feeID string
		_, err := p.Provision(ctx, feeRequest(""), func(ctx context.Context, fee *models.TransactionRecord) error {
			feeID = fee.ID
			return boom
		})
		assert.ErrorIs(t, err, boom)

		bal, err := store.GetBalance(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, "15000", bal.String())

		recs, err := store.ListTransactionsByAccount(ctx, "owner", 0)
		require.NoError(t, err)
		require.Len(t, recs, 3)
		assert.Equal(t, models.PROJECT_FEE, recs[1].Kind)
		assert.Equal(t, models.REFUND, recs[2].Kind)
		assert.Equal(t, feeID, recs[2].ReferenceID)

		status, err := c.Status(ctx, feeID)
		require.NoError(t, err)
		assert.Equal(t, models.REVERSED, status)
	})

	t.Run("Retry after refund is rejected", func(t *testing.T) {
		_, c := setup(t, "15000")
		p := New(c)

		_, err := p.Provision(ctx, feeRequest("k"), func(ctx context.Context, fee *models.TransactionRecord) error {
			return errors.New("first attempt fails")
		})
		require.Error(t, err)

		_, err = p.Provision(ctx, feeRequest("k"), func(ctx context.Context, fee *models.TransactionRecord) error {
			t.Fatal("create must not run for a refunded fee")
			return nil
		})
		assert.ErrorIs(t, err, ErrFeeAlreadyRefunded)
	})
}

func TestProvisionRefundFailure(t *testing.T) {
	ctx := context.Background()
	fee := &models.TransactionRecord{ID: "fee-1", AccountID: "owner", Kind: models.PROJECT_FEE, Amount: decimal.NewFromInt(-10000)}
	createErr := errors.New("insert failed")
	refundErr := errors.New("ledger down")

	charger := mocks.NewCharger(t)
	charger.On("Execute", mock.Anything, mock.Anything).Return(fee, nil).Once()
	charger.On("Refund", mock.Anything, "fee-1").Return(nil, refundErr).Once()

	p := New(charger)
	_, err := p.Provision(ctx, feeRequest(""), func(ctx context.Context, fee *models.TransactionRecord) error {
		return createErr
	})
	assert.ErrorIs(t, err, createErr)
	assert.ErrorIs(t, err, refundErr)
	assert.Contains(t, err.Error(), "fee-1")
}

func TestProvisionRefundIgnoresCallerCancellation(t *testing.T) {
	fee := &models.TransactionRecord{ID: "fee-1", AccountID: "owner", Kind: models.PROJECT_FEE}
	ctx, cancel := context.WithCancel(context.Background())

	charger := mocks.NewCharger(t)
	charger.On("Execute", mock.Anything, mock.Anything).Return(fee, nil).Once()
	charger.On("Refund", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "fee-1").
		Return(&models.TransactionRecord{ID: "refund-1"}, nil).Once()

	p := New(charger)
	_, err := p.Provision(ctx, feeRequest(""), func(ctx context.Context, fee *models.TransactionRecord) error {
		cancel()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// failingProjects rejects every insert.
type failingProjects struct {
	storage.ProjectStore
	err error
}

func (f *failingProjects) CreateProject(ctx context.Context, p *models.Project) (*models.Project, error) {
	return nil, f.err
}

func TestStartProject(t *testing.T) {
	ctx := context.Background()

	t.Run("Success with defaults", func(t *testing.T) {
		store, c := setup(t, "10000")
		svc := NewProjectService(New(c), store)

		p, err := svc.StartProject(ctx, "owner", ProjectInput{
			Description: "rooftop solar",
			ConfigID:    "cfg-1",
			Data:        map[string]any{"panels": 12},
		})
		require.NoError(t, err)
		assert.Equal(t, DefaultProjectName, p.ProjectName)
		assert.Equal(t, "owner", p.OwnerID)
		assert.Equal(t, "cfg-1", p.ConfigID)
		assert.NotEmpty(t, p.FeeTransactionID)

		fee, err := store.GetTransaction(ctx, p.FeeTransactionID)
		require.NoError(t, err)
		assert.Equal(t, models.PROJECT_FEE, fee.Kind)

		bal, err := store.GetBalance(ctx, "owner")
		require.NoError(t, err)
		assert.True(t, bal.IsZero())
	})

	t.Run("Insufficient funds creates nothing", func(t *testing.T) {
		store, c := setup(t, "9999")
		svc := NewProjectService(New(c), store)

		_, err := svc.StartProject(ctx, "owner", ProjectInput{ProjectName: "Solar"})
		assert.ErrorIs(t, err, coordinator.ErrInsufficientFunds)

		list, err := store.ListProjectsByOwner(ctx, "owner")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Persistence failure refunds the fee", func(t *testing.T) {
		store, c := setup(t, "10000")
		boom := errors.New("projects table unavailable")
		svc := NewProjectService(New(c), &failingProjects{ProjectStore: store, err: boom})

		_, err := svc.StartProject(ctx, "owner", ProjectInput{ProjectName: "Solar"})
		assert.ErrorIs(t, err, boom)

		bal, err := store.GetBalance(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, "10000", bal.String())
	})

	t.Run("Idempotent retry returns the same project", func(t *testing.T) {
		store, c := setup(t, "25000")
		svc := NewProjectService(New(c), store)

		first, err := svc.StartProject(ctx, "owner", ProjectInput{ProjectName: "Solar", IdempotencyKey: "req-1"})
		require.NoError(t, err)
		second, err := svc.StartProject(ctx, "owner", ProjectInput{ProjectName: "Solar", IdempotencyKey: "req-1"})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.FeeTransactionID, second.FeeTransactionID)

		bal, err := store.GetBalance(ctx, "owner")
		require.NoError(t, err)
		assert.Equal(t, "15000", bal.String())
	})
}
