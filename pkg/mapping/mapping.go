package mapping

import (
	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/provisioner"
	"github.com/chris/funding-ledger/pkg/wallet"
	"github.com/google/uuid"
)

// ToApiAccount converts a domain Account model to an API Account model.
func ToApiAccount(acc *models.Account) *api.Account {
	return &api.Account{
		Id:           acc.ID,
		Balance:      acc.Balance,
		ReferralCode: acc.ReferralCode,
		CreatedAt:    acc.CreatedAt,
	}
}

// ToApiTransaction converts a domain TransactionRecord to an API Transaction model.
func ToApiTransaction(rec *models.TransactionRecord) *api.Transaction {
	return &api.Transaction{
		Id:             rec.ID,
		AccountId:      rec.AccountID,
		Kind:           api.TransactionKind(rec.Kind),
		Amount:         rec.Amount,
		BalanceAfter:   rec.BalanceAfter,
		Status:         api.TransactionStatus(rec.Status),
		IdempotencyKey: optional(rec.IdempotencyKey),
		ReferenceId:    optional(rec.ReferenceID),
		Description:    rec.Description,
		Timestamp:      rec.Timestamp,
	}
}

// ToApiTopUpResponse converts a wallet TopUpResult to the API response.
func ToApiTopUpResponse(res wallet.TopUpResult) *api.TopUpResponse {
	out := &api.TopUpResponse{
		Balance:               res.Balance,
		CashbackApplied:       res.CashbackApplied,
		TopupTransactionId:    res.TopUpTransactionID,
		CashbackTransactionId: optional(res.CashbackTransactionID),
	}
	if res.CashbackErr != nil {
		msg := res.CashbackErr.Error()
		out.CashbackError = &msg
	}
	return out
}

// ToDomainProjectInput converts an API NewProject model to the provisioner input.
func ToDomainProjectInput(p *api.NewProject, idempotencyKey *string) provisioner.ProjectInput {
	in := provisioner.ProjectInput{}
	if p.ProjectName != nil {
		in.ProjectName = *p.ProjectName
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.ConfigId != nil {
		in.ConfigID = *p.ConfigId
	}
	if p.Data != nil {
		in.Data = *p.Data
	}
	if idempotencyKey != nil {
		in.IdempotencyKey = *idempotencyKey
	}
	return in
}

// ToApiProject converts a domain Project model to an API Project model.
func ToApiProject(p *models.Project) *api.Project {
	id, _ := uuid.Parse(p.ID)
	data := p.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	return &api.Project{
		Id:               id,
		OwnerId:          p.OwnerID,
		ConfigId:         optional(p.ConfigID),
		ProjectName:      p.ProjectName,
		Description:      p.Description,
		Data:             data,
		FeeTransactionId: p.FeeTransactionID,
		CreatedAt:        p.CreatedAt,
	}
}

// ToApiNotification converts a domain Notification model to an API Notification model.
func ToApiNotification(n *models.Notification) *api.Notification {
	return &api.Notification{
		TransactionId: n.TransactionID,
		Type:          string(n.Type),
		Title:         n.Title,
		Message:       n.Message,
		Read:          n.Read,
		Timestamp:     n.Timestamp,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
