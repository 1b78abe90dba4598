// Package api holds the HTTP request and response types and the chi server
// binding for the funding ledger API.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// TransactionKind defines model for TransactionKind.
type TransactionKind string

// Defines values for TransactionKind.
const (
	TOPUP         TransactionKind = "TOPUP"
	CASHBACK      TransactionKind = "CASHBACK"
	PROJECTFEE    TransactionKind = "PROJECT_FEE"
	REFUND        TransactionKind = "REFUND"
	REFERRALBONUS TransactionKind = "REFERRAL_BONUS"
)

// TransactionStatus defines model for TransactionStatus.
type TransactionStatus string

// Defines values for TransactionStatus.
const (
	COMMITTED TransactionStatus = "COMMITTED"
	REVERSED  TransactionStatus = "REVERSED"
)

// Account defines model for Account.
type Account struct {
	Id           string          `json:"id"`
	Balance      decimal.Decimal `json:"balance"`
	ReferralCode string          `json:"referral_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewAccount defines model for NewAccount.
type NewAccount struct {
	// Id is generated when omitted.
	Id *string `json:"id,omitempty"`

	// ReferralCode is the code of the referring account, if any.
	ReferralCode *string `json:"referral_code,omitempty"`
}

// TopUpRequest defines model for TopUpRequest.
type TopUpRequest struct {
	AccountId string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// TopUpResponse defines model for TopUpResponse.
type TopUpResponse struct {
	Balance               decimal.Decimal `json:"balance"`
	CashbackApplied       bool            `json:"cashback_applied"`
	CashbackError         *string         `json:"cashback_error,omitempty"`
	TopupTransactionId    string          `json:"topup_transaction_id"`
	CashbackTransactionId *string         `json:"cashback_transaction_id,omitempty"`
}

// NewProject defines model for NewProject.
type NewProject struct {
	OwnerId     string                  `json:"owner_id"`
	ProjectName *string                 `json:"project_name,omitempty"`
	Description *string                 `json:"description,omitempty"`
	ConfigId    *string                 `json:"config_id,omitempty"`
	Data        *map[string]interface{} `json:"data,omitempty"`
}

// Project defines model for Project.
type Project struct {
	Id               openapi_types.UUID     `json:"id"`
	OwnerId          string                 `json:"owner_id"`
	ConfigId         *string                `json:"config_id,omitempty"`
	ProjectName      string                 `json:"project_name"`
	Description      string                 `json:"description"`
	Data             map[string]interface{} `json:"data"`
	FeeTransactionId string                 `json:"fee_transaction_id"`
	CreatedAt        time.Time              `json:"created_at"`
}

// Transaction defines model for Transaction.
type Transaction struct {
	Id             string            `json:"id"`
	AccountId      string            `json:"account_id"`
	Kind           TransactionKind   `json:"kind"`
	Amount         decimal.Decimal   `json:"amount"`
	BalanceAfter   decimal.Decimal   `json:"balance_after"`
	Status         TransactionStatus `json:"status"`
	IdempotencyKey *string           `json:"idempotency_key,omitempty"`
	ReferenceId    *string           `json:"reference_id,omitempty"`
	Description    string            `json:"description"`
	Timestamp      time.Time         `json:"timestamp"`
}

// Notification defines model for Notification.
type Notification struct {
	TransactionId string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Read          bool      `json:"read"`
	Timestamp     time.Time `json:"timestamp"`
}

// MarkReadResult defines model for MarkReadResult.
type MarkReadResult struct {
	Updated int `json:"updated"`
}

// Error defines model for Error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Health defines model for Health.
type Health struct {
	Status string `json:"status"`
}

// ListAccountTransactionsParams defines parameters for ListAccountTransactions.
type ListAccountTransactionsParams struct {
	// Limit returns only the most recent records.
	Limit *int32 `form:"limit,omitempty" json:"limit,omitempty"`
}

// TopUpParams defines parameters for TopUp.
type TopUpParams struct {
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}

// StartProjectParams defines parameters for StartProject.
type StartProjectParams struct {
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}
