package storage

import (
	"context"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// LedgerReader defines the interface for reading balances and ledger records.
type LedgerReader interface {
	// GetBalance returns the committed balance of an account.
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)

	// GetTransaction retrieves a single ledger record by ID.
	GetTransaction(ctx context.Context, id string) (*models.TransactionRecord, error)

	// ListTransactionsByAccount returns an account's records in timestamp order.
	// A limit <= 0 returns every record.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit int32) ([]models.TransactionRecord, error)

	// FindByIdempotencyKey returns ErrTransactionNotFound when no record carries the key.
	FindByIdempotencyKey(ctx context.Context, key string) (*models.TransactionRecord, error)

	// FindRefundFor returns the REFUND record referencing originalID, or ErrTransactionNotFound.
	FindRefundFor(ctx context.Context, originalID string) (*models.TransactionRecord, error)
}

// LedgerWriter defines the single mutation the ledger supports.
type LedgerWriter interface {
	// ApplyDelta adds rec.Amount to the account balance and appends rec in one atomic commit.
	// rec.BalanceAfter and rec.Status are filled in on success.
	ApplyDelta(ctx context.Context, rec *models.TransactionRecord, allowOverdraft bool) (decimal.Decimal, error)
}

// LedgerStore is the full ledger contract used by the coordinator.
type LedgerStore interface {
	LedgerReader
	LedgerWriter
}
