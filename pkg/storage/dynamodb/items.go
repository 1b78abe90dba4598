package dynamodb

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/shopspring/decimal"
)

// timestampLayout is fixed width so that string sort keys order chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timestampLayout, s)
}

func parseNumber(n attributevalue.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(n))
}

type accountItem struct {
	AccountID    string                `dynamodbav:"account_id"`
	Balance      attributevalue.Number `dynamodbav:"balance"`
	Version      int64                 `dynamodbav:"version"`
	ReferralCode string                `dynamodbav:"referral_code,omitempty"`
	CreatedAt    string                `dynamodbav:"created_at"`
}

func toAccountItem(a *models.Account) accountItem {
	return accountItem{
		AccountID:    a.ID,
		Balance:      attributevalue.Number(a.Balance.String()),
		Version:      a.Version,
		ReferralCode: a.ReferralCode,
		CreatedAt:    formatTime(a.CreatedAt),
	}
}

func (i accountItem) toModel() (*models.Account, error) {
	balance, err := parseNumber(i.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance for account %s: %w", i.AccountID, err)
	}
	createdAt, err := parseTime(i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for account %s: %w", i.AccountID, err)
	}
	return &models.Account{
		ID:           i.AccountID,
		Balance:      balance,
		Version:      i.Version,
		ReferralCode: i.ReferralCode,
		CreatedAt:    createdAt,
	}, nil
}

type recordItem struct {
	ID             string                `dynamodbav:"id"`
	AccountID      string                `dynamodbav:"account_id"`
	Kind           string                `dynamodbav:"kind"`
	Amount         attributevalue.Number `dynamodbav:"amount"`
	BalanceAfter   attributevalue.Number `dynamodbav:"balance_after"`
	Status         string                `dynamodbav:"status"`
	IdempotencyKey string                `dynamodbav:"idempotency_key,omitempty"`
	ReferenceID    string                `dynamodbav:"reference_id,omitempty"`
	Description    string                `dynamodbav:"description,omitempty"`
	Timestamp      string                `dynamodbav:"timestamp"`
	// Seq is the account version the record was committed at. It is unique
	// per account and orders the account_id-seq-index.
	Seq            int64                 `dynamodbav:"seq"`
}

func toRecordItem(r *models.TransactionRecord, seq int64) recordItem {
	return recordItem{
		ID:             r.ID,
		AccountID:      r.AccountID,
		Kind:           string(r.Kind),
		Amount:         attributevalue.Number(r.Amount.String()),
		BalanceAfter:   attributevalue.Number(r.BalanceAfter.String()),
		Status:         string(r.Status),
		IdempotencyKey: r.IdempotencyKey,
		ReferenceID:    r.ReferenceID,
		Description:    r.Description,
		Timestamp:      formatTime(r.Timestamp),
		Seq:            seq,
	}
}

func (i recordItem) toModel() (*models.TransactionRecord, error) {
	amount, err := parseNumber(i.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount for transaction %s: %w", i.ID, err)
	}
	after, err := parseNumber(i.BalanceAfter)
	if err != nil {
		return nil, fmt.Errorf("invalid balance_after for transaction %s: %w", i.ID, err)
	}
	ts, err := parseTime(i.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp for transaction %s: %w", i.ID, err)
	}
	return &models.TransactionRecord{
		ID:             i.ID,
		AccountID:      i.AccountID,
		Kind:           models.TransactionKind(i.Kind),
		Amount:         amount,
		BalanceAfter:   after,
		Status:         models.TransactionStatus(i.Status),
		IdempotencyKey: i.IdempotencyKey,
		ReferenceID:    i.ReferenceID,
		Description:    i.Description,
		Timestamp:      ts,
	}, nil
}

type idempotencyItem struct {
	IdempotencyKey string `dynamodbav:"idempotency_key"`
	TransactionID  string `dynamodbav:"transaction_id"`
}

type notificationItem struct {
	AccountID     string `dynamodbav:"account_id"`
	TransactionID string `dynamodbav:"transaction_id"`
	Type          string `dynamodbav:"type"`
	Title         string `dynamodbav:"title"`
	Message       string `dynamodbav:"message"`
	Read          bool   `dynamodbav:"read"`
	Timestamp     string `dynamodbav:"timestamp"`
}

func toNotificationItem(n *models.Notification) notificationItem {
	return notificationItem{
		AccountID:     n.AccountID,
		TransactionID: n.TransactionID,
		Type:          string(n.Type),
		Title:         n.Title,
		Message:       n.Message,
		Read:          n.Read,
		Timestamp:     formatTime(n.Timestamp),
	}
}

func (i notificationItem) toModel() (models.Notification, error) {
	ts, err := parseTime(i.Timestamp)
	if err != nil {
		return models.Notification{}, fmt.Errorf("invalid timestamp for notification %s: %w", i.TransactionID, err)
	}
	return models.Notification{
		AccountID:     i.AccountID,
		TransactionID: i.TransactionID,
		Type:          models.NotificationType(i.Type),
		Title:         i.Title,
		Message:       i.Message,
		Read:          i.Read,
		Timestamp:     ts,
	}, nil
}

type projectItem struct {
	ID               string         `dynamodbav:"id"`
	OwnerID          string         `dynamodbav:"owner_id"`
	ConfigID         string         `dynamodbav:"config_id,omitempty"`
	ProjectName      string         `dynamodbav:"project_name"`
	Description      string         `dynamodbav:"description"`
	Data             map[string]any `dynamodbav:"data"`
	FeeTransactionID string         `dynamodbav:"fee_transaction_id"`
	CreatedAt        string         `dynamodbav:"created_at"`
}

func toProjectItem(p *models.Project) projectItem {
	return projectItem{
		ID:               p.ID,
		OwnerID:          p.OwnerID,
		ConfigID:         p.ConfigID,
		ProjectName:      p.ProjectName,
		Description:      p.Description,
		Data:             p.Data,
		FeeTransactionID: p.FeeTransactionID,
		CreatedAt:        formatTime(p.CreatedAt),
	}
}

func (i projectItem) toModel() (*models.Project, error) {
	createdAt, err := parseTime(i.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for project %s: %w", i.ID, err)
	}
	return &models.Project{
		ID:               i.ID,
		OwnerID:          i.OwnerID,
		ConfigID:         i.ConfigID,
		ProjectName:      i.ProjectName,
		Description:      i.Description,
		Data:             i.Data,
		FeeTransactionID: i.FeeTransactionID,
		CreatedAt:        createdAt,
	}, nil
}
