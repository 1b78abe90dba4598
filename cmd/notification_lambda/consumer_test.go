package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/notifier"
	"github.com/chris/funding-ledger/pkg/storage/memory"
	"github.com/chris/funding-ledger/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sqsMessage(t *testing.T, id string, n *models.Notification) events.SQSMessage {
	t.Helper()
	body, err := json.Marshal(notifier.Message{Type: notifier.MessageTypeNotification, Notification: n})
	require.NoError(t, err)
	return events.SQSMessage{MessageId: id, Body: string(body)}
}

func TestHandleRequest(t *testing.T) {
	n := &models.Notification{
		AccountID:     "acc",
		TransactionID: "tx-1",
		Type:          models.NotificationSuccess,
		Title:         "Top-up approved",
		Timestamp:     time.Unix(100, 0).UTC(),
	}

	t.Run("Saves Once", func(t *testing.T) {
		store := memory.New()
		c := NewConsumer(store)
		event := events.SQSEvent{Records: []events.SQSMessage{sqsMessage(t, "m1", n), sqsMessage(t, "m2", n)}}

		resp, err := c.HandleRequest(context.Background(), event)
		require.NoError(t, err)
		assert.Empty(t, resp.BatchItemFailures)

		saved, err := store.ListNotifications(context.Background(), "acc")
		require.NoError(t, err)
		require.Len(t, saved, 1)
		assert.Equal(t, "tx-1", saved[0].TransactionID)
	})

	t.Run("Reports Failed Records", func(t *testing.T) {
		store := mocks.NewStorage(t)
		store.On("SaveNotification", mock.Anything, mock.Anything).Return(false, errors.New("throttled")).Once()

		c := NewConsumer(store)
		event := events.SQSEvent{Records: []events.SQSMessage{
			sqsMessage(t, "m1", n),
			{MessageId: "m2", Body: "{not json"},
			{MessageId: "m3", Body: `{"type":"unknown"}`},
		}}

		resp, err := c.HandleRequest(context.Background(), event)
		require.NoError(t, err)
		require.Len(t, resp.BatchItemFailures, 2)
		assert.Equal(t, "m1", resp.BatchItemFailures[0].ItemIdentifier)
		assert.Equal(t, "m2", resp.BatchItemFailures[1].ItemIdentifier)
	})
}
