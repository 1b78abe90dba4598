package sqlstore

import (
	"context"
	"sync"
	"testing"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newRecord(accountID string, kind models.TransactionKind, amount, key string) *models.TransactionRecord {
	return &models.TransactionRecord{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		Kind:           kind,
		Amount:         decimal.RequireFromString(amount),
		IdempotencyKey: key,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", pg.rebind("SELECT 1 WHERE a = ? AND b = ?"))

	lite := &Store{dialect: SQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestOpenRejectsUnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Dialect("oracle"), "")
	assert.Error(t, err)
}

func TestApplyDelta(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.CreateAccount(ctx, &models.Account{ID: "acc"})
		require.NoError(t, err)

		rec := newRecord("acc", models.TOPUP, "500.25", "k1")
		bal, err := s.ApplyDelta(ctx, rec, false)
		require.NoError(t, err)
		assert.Equal(t, "500.25", bal.String())
		assert.Equal(t, models.COMMITTED, rec.Status)

		got, err := s.GetTransaction(ctx, rec.ID)
		require.NoError(t, err)
		assert.True(t, got.Amount.Equal(rec.Amount))
		assert.True(t, got.BalanceAfter.Equal(bal))
		assert.Equal(t, "k1", got.IdempotencyKey)

		acc, err := s.GetAccount(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, int64(1), acc.Version)
	})

	t.Run("Insufficient funds leaves ledger untouched", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.CreateAccount(ctx, &models.Account{ID: "acc"})
		require.NoError(t, err)

		_, err = s.ApplyDelta(ctx, newRecord("acc", models.PROJECT_FEE, "-10000", ""), false)
		assert.ErrorIs(t, err, storage.ErrInsufficientFunds)

		recs, err := s.ListTransactionsByAccount(ctx, "acc", 0)
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("Duplicate idempotency key", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.CreateAccount(ctx, &models.Account{ID: "acc"})
		require.NoError(t, err)

		_, err = s.ApplyDelta(ctx, newRecord("acc", models.TOPUP, "1", "same"), false)
		require.NoError(t, err)
		_, err = s.ApplyDelta(ctx, newRecord("acc", models.TOPUP, "1", "same"), false)
		assert.ErrorIs(t, err, storage.ErrDuplicateIdempotencyKey)

		bal, err := s.GetBalance(ctx, "acc")
		require.NoError(t, err)
		assert.Equal(t, "1", bal.String())

		found, err := s.FindByIdempotencyKey(ctx, "same")
		require.NoError(t, err)
		assert.Equal(t, models.TOPUP, found.Kind)
	})

	t.Run("Unknown account", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.ApplyDelta(ctx, newRecord("ghost", models.TOPUP, "1", ""), false)
		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	})
}

func TestListTransactionsByAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateAccount(ctx, &models.Account{ID: "acc"})
	require.NoError(t, err)

	for _, amount := range []string{"10", "20", "30"} {
		_, err := s.ApplyDelta(ctx, newRecord("acc", models.TOPUP, amount, ""), false)
		require.NoError(t, err)
	}

	all, err := s.ListTransactionsByAccount(ctx, "acc", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "10", all[0].Amount.String())

	latest, err := s.ListTransactionsByAccount(ctx, "acc", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "20", latest[0].Amount.String())
	assert.Equal(t, "30", latest[1].Amount.String())
	assert.Equal(t, "60", latest[1].BalanceAfter.String())
}

func TestConcurrentApplyDeltaKeepsReplayInvariant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateAccount(ctx, &models.Account{ID: "acc"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ApplyDelta(ctx, newRecord("acc", models.TOPUP, "2.5", ""), false)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	recs, err := s.ListTransactionsByAccount(ctx, "acc", 0)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, r := range recs {
		sum = sum.Add(r.Amount)
		assert.True(t, sum.Equal(r.BalanceAfter))
	}
	bal, err := s.GetBalance(ctx, "acc")
	require.NoError(t, err)
	assert.True(t, bal.Equal(sum))
	assert.Equal(t, "50", bal.String())
}

func TestFindRefundFor(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, err := s.CreateAccount(ctx, &models.Account{ID: "acc"})
	require.NoError(t, err)
	_, err = s.ApplyDelta(ctx, newRecord("acc", models.TOPUP, "100", ""), false)
	require.NoError(t, err)
	fee := newRecord("acc", models.PROJECT_FEE, "-40", "")
	_, err = s.ApplyDelta(ctx, fee, false)
	require.NoError(t, err)

	_, err = s.FindRefundFor(ctx, fee.ID)
	assert.ErrorIs(t, err, storage.ErrTransactionNotFound)

	refund := newRecord("acc", models.REFUND, "40", "refund:"+fee.ID)
	refund.ReferenceID = fee.ID
	_, err = s.ApplyDelta(ctx, refund, false)
	require.NoError(t, err)

	got, err := s.FindRefundFor(ctx, fee.ID)
	require.NoError(t, err)
	assert.Equal(t, refund.ID, got.ID)
	assert.Equal(t, fee.ID, got.ReferenceID)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateAccount(ctx, &models.Account{ID: "b", ReferralCode: "REF-B"})
	require.NoError(t, err)
	_, err = s.CreateAccount(ctx, &models.Account{ID: "a"})
	require.NoError(t, err)

	_, err = s.CreateAccount(ctx, &models.Account{ID: "a"})
	assert.ErrorIs(t, err, storage.ErrAccountExists)

	owner, err := s.GetAccountByReferralCode(ctx, "REF-B")
	require.NoError(t, err)
	assert.Equal(t, "b", owner.ID)

	_, err = s.GetAccount(ctx, "zzz")
	assert.ErrorIs(t, err, storage.ErrAccountNotFound)

	all, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	n := &models.Notification{AccountID: "acc", TransactionID: "tx1", Type: models.NotificationSuccess, Title: "Top-up", Message: "ok"}
	created, err := s.SaveNotification(ctx, n)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.SaveNotification(ctx, n)
	require.NoError(t, err)
	assert.False(t, created)

	list, err := s.ListNotifications(ctx, "acc")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	count, err := s.MarkNotificationsRead(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err = s.ListNotifications(ctx, "acc")
	require.NoError(t, err)
	assert.True(t, list[0].Read)
}

func TestProjects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateProject(ctx, &models.Project{
		ID:               "p1",
		OwnerID:          "acc",
		ProjectName:      "Solar",
		Data:             map[string]any{"goal": "roofs"},
		FeeTransactionID: "fee",
	})
	require.NoError(t, err)

	_, err = s.CreateProject(ctx, &models.Project{ID: "p1", OwnerID: "acc", FeeTransactionID: "fee"})
	assert.ErrorIs(t, err, storage.ErrProjectExists)

	p, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "roofs", p.Data["goal"])

	_, err = s.GetProject(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrProjectNotFound)

	list, err := s.ListProjectsByOwner(ctx, "acc")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
