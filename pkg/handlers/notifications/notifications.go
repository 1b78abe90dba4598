package notifications

import (
	"net/http"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/handlers/respond"
	"github.com/chris/funding-ledger/pkg/mapping"
	"github.com/chris/funding-ledger/pkg/storage"
)

// NotificationsHandler serves the notifications written by the notifier.
type NotificationsHandler struct {
	Store storage.NotificationStore
}

// NewNotificationsHandler creates a new NotificationsHandler.
func NewNotificationsHandler(store storage.NotificationStore) *NotificationsHandler {
	return &NotificationsHandler{Store: store}
}

// ListNotifications returns an account's notifications, newest first.
func (h *NotificationsHandler) ListNotifications(w http.ResponseWriter, r *http.Request, accountId string) {
	domainNotifications, err := h.Store.ListNotifications(r.Context(), accountId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	apiNotifications := make([]*api.Notification, len(domainNotifications))
	for i := range domainNotifications {
		apiNotifications[i] = mapping.ToApiNotification(&domainNotifications[i])
	}
	respond.JSON(w, http.StatusOK, apiNotifications)
}

// MarkNotificationsRead marks every unread notification of the account as read.
func (h *NotificationsHandler) MarkNotificationsRead(w http.ResponseWriter, r *http.Request, accountId string) {
	n, err := h.Store.MarkNotificationsRead(r.Context(), accountId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.MarkReadResult{Updated: n})
}
