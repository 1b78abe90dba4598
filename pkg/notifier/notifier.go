// Package notifier delivers user-facing notifications for committed transactions.
// Delivery happens after the account lock is released and never affects the
// outcome of the operation that triggered it.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// TransactionSummary describes a committed ledger record.
type TransactionSummary struct {
	TransactionID string                 `json:"transaction_id"`
	AccountID     string                 `json:"account_id"`
	Kind          models.TransactionKind `json:"kind"`
	Amount        decimal.Decimal        `json:"amount"`
	BalanceAfter  decimal.Decimal        `json:"balance_after"`
	Timestamp     time.Time              `json:"timestamp"`
}

// SummaryOf builds the summary of a committed record.
func SummaryOf(rec *models.TransactionRecord) TransactionSummary {
	return TransactionSummary{
		TransactionID: rec.ID,
		AccountID:     rec.AccountID,
		Kind:          rec.Kind,
		Amount:        rec.Amount,
		BalanceAfter:  rec.BalanceAfter,
		Timestamp:     rec.Timestamp,
	}
}

// Notifier is what the coordinator calls after a commit.
// Implementations must be idempotent per TransactionID.
type Notifier interface {
	Notify(ctx context.Context, accountID string, summary TransactionSummary) error
}

// Sender performs a single delivery attempt.
type Sender interface {
	Send(ctx context.Context, n *models.Notification) error
}

// MessageType defines the type of a queued notification message.
type MessageType string

const (
	// MessageTypeNotification carries a notification to be persisted by a consumer.
	MessageTypeNotification MessageType = "notification"
)

// Message is the envelope written to SQS and Kafka.
type Message struct {
	Type         MessageType          `json:"type"`
	Notification *models.Notification `json:"notification"`
}

// NotificationFailure reports a notification that exhausted its retries.
// It is logged and counted, never returned to the coordinator's caller.
type NotificationFailure struct {
	TransactionID string
	AccountID     string
	Attempts      int
	Err           error
}

func (f *NotificationFailure) Error() string {
	return fmt.Sprintf("notification for transaction %s failed after %d attempts: %v", f.TransactionID, f.Attempts, f.Err)
}

func (f *NotificationFailure) Unwrap() error {
	return f.Err
}
