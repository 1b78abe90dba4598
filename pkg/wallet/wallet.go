// Package wallet implements the caller-facing top-up and referral flows on top
// of the coordinator.
package wallet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the part of the coordinator the wallet needs.
type Ledger interface {
	TopUpCredit(ctx context.Context, accountID string, amount decimal.Decimal, idempotencyKey string) (*models.TransactionRecord, error)
	CashbackCredit(ctx context.Context, accountID string, topUpAmount decimal.Decimal, idempotencyKey string, topUpID string) (*models.TransactionRecord, error)
	ReferralCredit(ctx context.Context, referrerID string, idempotencyKey string) (*models.TransactionRecord, error)
}

var _ Ledger = (*coordinator.Coordinator)(nil)

// TopUpResult is returned for a committed top-up. CashbackErr is set when the
// companion cashback could not be credited; the top-up stands regardless.
type TopUpResult struct {
	Balance               decimal.Decimal
	CashbackApplied       bool
	CashbackErr           error
	TopUpTransactionID    string
	CashbackTransactionID string
}

// Service exposes the wallet flows.
type Service struct {
	ledger Ledger
	logger *slog.Logger
}

// NewService creates a wallet Service.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger, logger: slog.Default()}
}

// CashbackKey is the idempotency key of the cashback that accompanies a top-up.
func CashbackKey(topUpKey string) string {
	return topUpKey + ":cashback"
}

// ReferralKey is the idempotency key of the bonus paid for referring referredID.
func ReferralKey(referredID string) string {
	return "referral:" + referredID
}

// TopUp credits amount and then the cashback on it as two separate commits.
// An empty idempotency key gets a fresh one so the cashback stays tied to
// this top-up.
func (s *Service) TopUp(ctx context.Context, accountID string, amount decimal.Decimal, idempotencyKey string) (TopUpResult, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	top, err := s.ledger.TopUpCredit(ctx, accountID, amount, idempotencyKey)
	if err != nil {
		return TopUpResult{}, err
	}
	result := TopUpResult{
		Balance:            top.BalanceAfter,
		TopUpTransactionID: top.ID,
	}

	cb, err := s.ledger.CashbackCredit(ctx, accountID, top.Amount, CashbackKey(idempotencyKey), top.ID)
	if err != nil {
		s.logger.Error("cashback failed after committed top-up",
			slog.String("account_id", accountID),
			slog.String("topup_transaction_id", top.ID),
			slog.String("error", err.Error()),
		)
		result.CashbackErr = fmt.Errorf("cashback for top-up %s: %w", top.ID, err)
		return result, nil
	}

	result.CashbackApplied = true
	result.CashbackTransactionID = cb.ID
	result.Balance = cb.BalanceAfter
	return result, nil
}

// GrantReferralBonus credits the referrer once per referred account.
func (s *Service) GrantReferralBonus(ctx context.Context, referrerID, referredID string) (*models.TransactionRecord, error) {
	if referrerID == referredID {
		return nil, fmt.Errorf("%w: an account cannot refer itself", coordinator.ErrInvalidOperation)
	}
	return s.ledger.ReferralCredit(ctx, referrerID, ReferralKey(referredID))
}
