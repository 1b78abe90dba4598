package mapping

import (
	"errors"
	"testing"
	"time"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/wallet"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToApiTransactionOmitsEmptyOptionals(t *testing.T) {
	rec := &models.TransactionRecord{
		ID:        "tx-1",
		AccountID: "acc",
		Kind:      models.PROJECT_FEE,
		Amount:    decimal.NewFromInt(-10000),
		Status:    models.REVERSED,
		Timestamp: time.Unix(100, 0),
	}
	got := ToApiTransaction(rec)
	assert.Equal(t, api.PROJECTFEE, got.Kind)
	assert.Equal(t, api.REVERSED, got.Status)
	assert.Nil(t, got.IdempotencyKey)
	assert.Nil(t, got.ReferenceId)

	rec.ReferenceID = "orig"
	got = ToApiTransaction(rec)
	require.NotNil(t, got.ReferenceId)
	assert.Equal(t, "orig", *got.ReferenceId)
}

func TestToApiTopUpResponse(t *testing.T) {
	got := ToApiTopUpResponse(wallet.TopUpResult{
		Balance:            decimal.NewFromInt(300),
		TopUpTransactionID: "top",
		CashbackErr:        errors.New("lock timeout"),
	})
	assert.False(t, got.CashbackApplied)
	require.NotNil(t, got.CashbackError)
	assert.Contains(t, *got.CashbackError, "lock timeout")
	assert.Nil(t, got.CashbackTransactionId)
}

func TestProjectMapping(t *testing.T) {
	name := "Solar"
	data := map[string]interface{}{"panels": 12}
	key := "req-1"
	in := ToDomainProjectInput(&api.NewProject{OwnerId: "acc", ProjectName: &name, Data: &data}, &key)
	assert.Equal(t, "Solar", in.ProjectName)
	assert.Equal(t, "req-1", in.IdempotencyKey)
	assert.Equal(t, 12, in.Data["panels"])

	id := uuid.New()
	p := ToApiProject(&models.Project{ID: id.String(), OwnerID: "acc"})
	assert.Equal(t, id, p.Id)
	assert.NotNil(t, p.Data)
	assert.Nil(t, p.ConfigId)
}
