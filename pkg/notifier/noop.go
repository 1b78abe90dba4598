package notifier

import (
	"context"

	"github.com/chris/funding-ledger/pkg/models"
)

// NoOpSender is a sender that does nothing.
type NoOpSender struct{}

// Send does nothing.
func (NoOpSender) Send(ctx context.Context, n *models.Notification) error {
	return nil
}

// NoOpNotifier is a Notifier that does nothing.
type NoOpNotifier struct{}

// Notify does nothing.
func (NoOpNotifier) Notify(ctx context.Context, accountID string, summary TransactionSummary) error {
	return nil
}
