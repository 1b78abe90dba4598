package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the business reason for a balance change.
type TransactionKind string

const (
	TOPUP          TransactionKind = "TOPUP"
	CASHBACK       TransactionKind = "CASHBACK"
	PROJECT_FEE    TransactionKind = "PROJECT_FEE"
	REFUND         TransactionKind = "REFUND"
	REFERRAL_BONUS TransactionKind = "REFERRAL_BONUS"
)

// TransactionStatus defines the possible states of a ledger record.
type TransactionStatus string

const (
	COMMITTED TransactionStatus = "COMMITTED"
	// REVERSED is never written. It is reported for a COMMITTED record that a REFUND references.
	REVERSED TransactionStatus = "REVERSED"
)

// Account is the owner of a balance. Balance is only ever changed through the coordinator.
type Account struct {
	ID           string          `json:"id"`
	Balance      decimal.Decimal `json:"balance"`
	Version      int64           `json:"version"`
	ReferralCode string          `json:"referral_code,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TransactionRecord is a single append-only entry in an account's ledger.
type TransactionRecord struct {
	ID             string            `json:"id"`
	AccountID      string            `json:"account_id"`
	Kind           TransactionKind   `json:"kind"`
	Amount         decimal.Decimal   `json:"amount"`
	BalanceAfter   decimal.Decimal   `json:"balance_after"`
	Status         TransactionStatus `json:"status"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	ReferenceID    string            `json:"reference_id,omitempty"`
	Description    string            `json:"description,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// OperationRequest describes one balance mutation. It is not persisted.
type OperationRequest struct {
	AccountID      string
	Kind           TransactionKind
	BaseAmount     decimal.Decimal
	IdempotencyKey string
	// ReferenceID names the transaction a REFUND compensates.
	ReferenceID    string
	AllowOverdraft bool
	Description    string
}

// NotificationType mirrors the severity shown to the user.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationInfo    NotificationType = "info"
)

// Notification is a user-facing message produced after a committed transaction.
// TransactionID doubles as its idempotency key.
type Notification struct {
	AccountID     string           `json:"account_id"`
	TransactionID string           `json:"transaction_id"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	Read          bool             `json:"read"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Project is the resource created after the project-start fee is charged.
type Project struct {
	ID               string         `json:"id"`
	OwnerID          string         `json:"owner_id"`
	ConfigID         string         `json:"config_id,omitempty"`
	ProjectName      string         `json:"project_name"`
	Description      string         `json:"description"`
	Data             map[string]any `json:"data"`
	FeeTransactionID string         `json:"fee_transaction_id"`
	CreatedAt        time.Time      `json:"created_at"`
}
