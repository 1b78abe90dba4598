package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

// TopUpCredit credits amount to the account.
func (c *Coordinator) TopUpCredit(ctx context.Context, accountID string, amount decimal.Decimal, idempotencyKey string) (*models.TransactionRecord, error) {
	return c.execute(ctx, models.OperationRequest{
		AccountID:      accountID,
		Kind:           models.TOPUP,
		BaseAmount:     amount,
		IdempotencyKey: idempotencyKey,
		Description:    "Wallet top-up",
	})
}

// CashbackCredit credits the cashback earned on a top-up of topUpAmount.
// It is only called as the companion of a committed TOPUP.
func (c *Coordinator) CashbackCredit(ctx context.Context, accountID string, topUpAmount decimal.Decimal, idempotencyKey string, topUpID string) (*models.TransactionRecord, error) {
	return c.execute(ctx, models.OperationRequest{
		AccountID:      accountID,
		Kind:           models.CASHBACK,
		BaseAmount:     topUpAmount,
		IdempotencyKey: idempotencyKey,
		ReferenceID:    topUpID,
		Description:    "Cashback on top-up",
	})
}

// ChargeProjectFee debits the fixed project start fee.
func (c *Coordinator) ChargeProjectFee(ctx context.Context, accountID string, idempotencyKey string) (*models.TransactionRecord, error) {
	return c.execute(ctx, models.OperationRequest{
		AccountID:      accountID,
		Kind:           models.PROJECT_FEE,
		IdempotencyKey: idempotencyKey,
		Description:    "Project start fee",
	})
}

// ReferralCredit credits the referral bonus to the referrer.
func (c *Coordinator) ReferralCredit(ctx context.Context, referrerID string, idempotencyKey string) (*models.TransactionRecord, error) {
	return c.execute(ctx, models.OperationRequest{
		AccountID:      referrerID,
		Kind:           models.REFERRAL_BONUS,
		IdempotencyKey: idempotencyKey,
		Description:    "Referral bonus",
	})
}

// RefundKey is the idempotency key of the compensating entry for originalID.
// At most one refund can therefore exist per original transaction.
func RefundKey(originalID string) string {
	return "refund:" + originalID
}

// Refund appends a REFUND that reverses a committed PROJECT_FEE. The original
// record is left untouched. Refunding twice returns the first refund.
func (c *Coordinator) Refund(ctx context.Context, originalID string) (*models.TransactionRecord, error) {
	orig, err := c.ledger.GetTransaction(ctx, originalID)
	if err != nil {
		return nil, translate(err)
	}
	if orig.Kind != models.PROJECT_FEE {
		return nil, fmt.Errorf("%w: transaction %s is a %s, only %s can be refunded",
			ErrInvalidOperation, orig.ID, orig.Kind, models.PROJECT_FEE)
	}
	return c.execute(ctx, models.OperationRequest{
		AccountID:      orig.AccountID,
		Kind:           models.REFUND,
		BaseAmount:     orig.Amount.Abs(),
		IdempotencyKey: RefundKey(orig.ID),
		ReferenceID:    orig.ID,
		Description:    "Refund of " + orig.ID,
	})
}

// Transaction returns a record with its effective status.
func (c *Coordinator) Transaction(ctx context.Context, id string) (*models.TransactionRecord, error) {
	rec, err := c.ledger.GetTransaction(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	status, err := c.effectiveStatus(ctx, rec)
	if err != nil {
		return nil, err
	}
	rec.Status = status
	return rec, nil
}

// Status reports COMMITTED, or REVERSED for a record a refund references.
func (c *Coordinator) Status(ctx context.Context, id string) (models.TransactionStatus, error) {
	rec, err := c.Transaction(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.Status, nil
}

func (c *Coordinator) effectiveStatus(ctx context.Context, rec *models.TransactionRecord) (models.TransactionStatus, error) {
	if rec.Kind != models.PROJECT_FEE {
		return rec.Status, nil
	}
	_, err := c.ledger.FindRefundFor(ctx, rec.ID)
	switch {
	case err == nil:
		return models.REVERSED, nil
	case errors.Is(err, storage.ErrTransactionNotFound):
		return rec.Status, nil
	default:
		return "", translate(err)
	}
}

// Balance returns the committed balance of an account.
func (c *Coordinator) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	bal, err := c.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return decimal.Zero, translate(err)
	}
	return bal, nil
}

// History returns the account's records oldest first. A limit <= 0 returns all
// of them, otherwise the most recent limit records.
func (c *Coordinator) History(ctx context.Context, accountID string, limit int32) ([]models.TransactionRecord, error) {
	if _, err := c.ledger.GetBalance(ctx, accountID); err != nil {
		return nil, translate(err)
	}
	recs, err := c.ledger.ListTransactionsByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, translate(err)
	}
	return recs, nil
}
