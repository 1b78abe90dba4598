package notifier

import (
	"fmt"

	"github.com/chris/funding-ledger/pkg/models"
)

// Compose turns a summary into the title and message shown to the user.
func Compose(s TransactionSummary) *models.Notification {
	n := &models.Notification{
		AccountID:     s.AccountID,
		TransactionID: s.TransactionID,
		Type:          models.NotificationSuccess,
		Timestamp:     s.Timestamp,
	}
	amount := s.Amount.Abs().StringFixed(2)
	balance := s.BalanceAfter.StringFixed(2)

	switch s.Kind {
	case models.TOPUP:
		n.Title = "Top-up approved"
		n.Message = fmt.Sprintf("+%s added to your balance. New balance: %s.", amount, balance)
	case models.CASHBACK:
		n.Title = "Cashback received"
		n.Message = fmt.Sprintf("+%s cashback added. New balance: %s.", amount, balance)
	case models.PROJECT_FEE:
		n.Title = "New project started"
		n.Message = fmt.Sprintf("Fee %s deducted. New balance: %s.", amount, balance)
	case models.REFUND:
		n.Type = models.NotificationInfo
		n.Title = "Project fee refunded"
		n.Message = fmt.Sprintf("The project could not be created. %s returned to your balance. New balance: %s.", amount, balance)
	case models.REFERRAL_BONUS:
		n.Title = "Referral bonus"
		n.Message = fmt.Sprintf("A friend joined with your code. +%s added. New balance: %s.", amount, balance)
	default:
		n.Type = models.NotificationInfo
		n.Title = "Balance updated"
		n.Message = fmt.Sprintf("Balance changed by %s. New balance: %s.", s.Amount.StringFixed(2), balance)
	}
	return n
}
