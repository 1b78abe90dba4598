package storage

import (
	"context"

	"github.com/chris/funding-ledger/pkg/models"
)

// NotificationStore persists user-facing notifications.
type NotificationStore interface {
	// SaveNotification stores n unless a notification for the same transaction exists.
	// created is false on a duplicate, which is not an error.
	SaveNotification(ctx context.Context, n *models.Notification) (created bool, err error)

	// ListNotifications returns an account's notifications, newest first.
	ListNotifications(ctx context.Context, accountID string) ([]models.Notification, error)

	// MarkNotificationsRead marks every unread notification of the account as read.
	MarkNotificationsRead(ctx context.Context, accountID string) (int, error)
}
