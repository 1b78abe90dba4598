package wallet

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/locker"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/policy"
	"github.com/chris/funding-ledger/pkg/storage/memory"
	"github.com/chris/funding-ledger/pkg/wallet/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, accounts ...string) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	for _, id := range accounts {
		_, err := store.CreateAccount(context.Background(), &models.Account{ID: id})
		require.NoError(t, err)
	}
	pol, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)
	c := coordinator.New(store, pol, locker.NewLocal(time.Second), nil)
	return NewService(c), store
}

// failingLocker times out on the failOn-th Lock call and delegates otherwise.
type failingLocker struct {
	locker.Locker
	failOn int32
	calls  atomic.Int32
}

func (l *failingLocker) Lock(ctx context.Context, key string) (func(), error) {
	if l.calls.Add(1) == l.failOn {
		return nil, locker.ErrLockTimeout
	}
	return l.Locker.Lock(ctx, key)
}

func TestTopUp(t *testing.T) {
	ctx := context.Background()

	t.Run("Credits top-up and cashback", func(t *testing.T) {
		svc, store := newService(t, "acc")

		res, err := svc.TopUp(ctx, "acc", decimal.NewFromInt(50000), "req-1")
		require.NoError(t, err)
		assert.True(t, res.CashbackApplied)
		assert.NoError(t, res.CashbackErr)
		assert.Equal(t, "50500", res.Balance.String())
		assert.NotEmpty(t, res.TopUpTransactionID)
		assert.NotEmpty(t, res.CashbackTransactionID)

		recs, err := store.ListTransactionsByAccount(ctx, "acc", 0)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, models.TOPUP, recs[0].Kind)
		assert.Equal(t, "50000", recs[0].Amount.String())
		assert.Equal(t, models.CASHBACK, recs[1].Kind)
		assert.Equal(t, "500", recs[1].Amount.String())
		assert.Equal(t, CashbackKey("req-1"), recs[1].IdempotencyKey)
	})

	t.Run("Cashback rounds half to even", func(t *testing.T) {
		svc, _ := newService(t, "acc")

		res, err := svc.TopUp(ctx, "acc", decimal.RequireFromString("0.50"), "")
		require.NoError(t, err)
		// 0.50 * 0.01 = 0.005, which rounds to 0.00.
		assert.Equal(t, "0.5", res.Balance.String())
	})

	t.Run("Replayed request credits once", func(t *testing.T) {
		svc, store := newService(t, "acc")

		first, err := svc.TopUp(ctx, "acc", decimal.NewFromInt(100), "same")
		require.NoError(t, err)
		second, err := svc.TopUp(ctx, "acc", decimal.NewFromInt(100), "same")
		require.NoError(t, err)

		assert.Equal(t, first.TopUpTransactionID, second.TopUpTransactionID)
		assert.Equal(t, first.CashbackTransactionID, second.CashbackTransactionID)
		bal, err := store.GetBalance(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, "101", bal.String())
	})

	t.Run("Retry after failed cashback keeps the committed amount", func(t *testing.T) {
		store := memory.New()
		_, err := store.CreateAccount(ctx, &models.Account{ID: "acc"})
		require.NoError(t, err)
		pol, err := policy.New(policy.DefaultConfig())
		require.NoError(t, err)
		lk := &failingLocker{Locker: locker.NewLocal(time.Second), failOn: 2}
		svc := NewService(coordinator.New(store, pol, lk, nil))

		first, err := svc.TopUp(ctx, "acc", decimal.NewFromInt(100), "K")
		require.NoError(t, err)
		assert.False(t, first.CashbackApplied)
		assert.ErrorIs(t, first.CashbackErr, coordinator.ErrTimeout)

		_, err = svc.TopUp(ctx, "acc", decimal.NewFromInt(5000), "K")
		assert.ErrorIs(t, err, coordinator.ErrInvalidOperation)
		bal, err := store.GetBalance(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, "100", bal.String())

		retried, err := svc.TopUp(ctx, "acc", decimal.NewFromInt(100), "K")
		require.NoError(t, err)
		assert.True(t, retried.CashbackApplied)
		assert.Equal(t, first.TopUpTransactionID, retried.TopUpTransactionID)
		bal, err = store.GetBalance(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, "101", bal.String())
	})

	t.Run("Invalid amount", func(t *testing.T) {
		svc, _ := newService(t, "acc")

		_, err := svc.TopUp(ctx, "acc", decimal.Zero, "")
		assert.ErrorIs(t, err, coordinator.ErrInvalidAmount)
	})

	t.Run("Cashback failure keeps the top-up", func(t *testing.T) {
		ledger := mocks.NewLedger(t)
		top := &models.TransactionRecord{ID: "top-1", Amount: decimal.NewFromInt(300), BalanceAfter: decimal.NewFromInt(300)}
		ledger.On("TopUpCredit", mock.Anything, "acc", decimal.NewFromInt(300), "k").Return(top, nil).Once()
		ledger.On("CashbackCredit", mock.Anything, "acc", decimal.NewFromInt(300), "k:cashback", "top-1").
			Return(nil, coordinator.ErrTimeout).Once()

		res, err := NewService(ledger).TopUp(ctx, "acc", decimal.NewFromInt(300), "k")
		require.NoError(t, err)
		assert.False(t, res.CashbackApplied)
		assert.ErrorIs(t, res.CashbackErr, coordinator.ErrTimeout)
		assert.Equal(t, "top-1", res.TopUpTransactionID)
		assert.Equal(t, "300", res.Balance.String())
	})

	t.Run("Top-up failure skips cashback", func(t *testing.T) {
		ledger := mocks.NewLedger(t)
		ledger.On("TopUpCredit", mock.Anything, "acc", mock.Anything, mock.Anything).
			Return(nil, errors.New("storage unavailable")).Once()

		_, err := NewService(ledger).TopUp(ctx, "acc", decimal.NewFromInt(300), "")
		assert.Error(t, err)
	})
}

func TestGrantReferralBonus(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, "referrer", "referred")

	rec, err := svc.GrantReferralBonus(ctx, "referrer", "referred")
	require.NoError(t, err)
	assert.Equal(t, models.REFERRAL_BONUS, rec.Kind)
	assert.Equal(t, "1000", rec.Amount.String())

	again, err := svc.GrantReferralBonus(ctx, "referrer", "referred")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, again.ID)

	bal, err := store.GetBalance(ctx, "referrer")
	require.NoError(t, err)
	assert.Equal(t, "1000", bal.String())

	_, err = svc.GrantReferralBonus(ctx, "referrer", "referrer")
	assert.ErrorIs(t, err, coordinator.ErrInvalidOperation)
}
