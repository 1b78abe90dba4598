package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
)

// StoreSender persists notifications directly, for deployments without a queue.
type StoreSender struct {
	store storage.NotificationStore
}

var _ Sender = (*StoreSender)(nil)

// NewStoreSender creates a StoreSender.
func NewStoreSender(store storage.NotificationStore) *StoreSender {
	return &StoreSender{store: store}
}

// Send saves n. A notification that already exists counts as delivered.
func (s *StoreSender) Send(ctx context.Context, n *models.Notification) error {
	created, err := s.store.SaveNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}
	if !created {
		slog.Debug("notification already stored", "transaction_id", n.TransactionID)
	}
	return nil
}
