package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/chris/funding-ledger/pkg/models"
)

// SaveNotification inserts n once per (account, transaction).
func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) (bool, error) {
	ts := n.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO notifications (account_id, transaction_id, type, title, message, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		n.AccountID, n.TransactionID, string(n.Type), n.Title, n.Message, boolToInt(n.Read), toNanos(ts))
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}
	return true, nil
}

// ListNotifications returns an account's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, accountID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT account_id, transaction_id, type, title, message, is_read, created_at FROM notifications WHERE account_id = ? ORDER BY created_at DESC, transaction_id DESC`),
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var (
			n         models.Notification
			typ       string
			createdAt int64
		)
		if err := rows.Scan(&n.AccountID, &n.TransactionID, &typ, &n.Title, &n.Message, &n.Read, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		n.Timestamp = fromNanos(createdAt)
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationsRead marks every unread notification of the account as read.
func (s *Store) MarkNotificationsRead(ctx context.Context, accountID string) (int, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE notifications SET is_read = 1 WHERE account_id = ? AND is_read = 0`), accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count updated notifications: %w", err)
	}
	return int(n), nil
}
