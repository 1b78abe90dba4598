package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/funding-ledger/pkg/notifier"
	"github.com/chris/funding-ledger/pkg/storage"
)

// Consumer persists notifications queued on SQS by the API.
type Consumer struct {
	Store storage.NotificationStore
}

// NewConsumer creates a new Consumer.
func NewConsumer(store storage.NotificationStore) *Consumer {
	return &Consumer{Store: store}
}

// HandleRequest saves every notification in the batch. Records that fail are
// reported back so SQS redelivers only those.
func (c *Consumer) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, message := range sqsEvent.Records {
		if err := c.handle(ctx, message); err != nil {
			log.Printf("ERROR: message %s: %v", message.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: message.MessageId})
		}
	}
	return resp, nil
}

func (c *Consumer) handle(ctx context.Context, message events.SQSMessage) error {
	var msg notifier.Message
	if err := json.Unmarshal([]byte(message.Body), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.Type != notifier.MessageTypeNotification || msg.Notification == nil {
		// Nothing a retry could fix.
		log.Printf("Skipping message %s of type %q", message.MessageId, msg.Type)
		return nil
	}

	n := msg.Notification
	created, err := c.Store.SaveNotification(ctx, n)
	if err != nil {
		return fmt.Errorf("failed to save notification for transaction %s: %w", n.TransactionID, err)
	}
	if created {
		log.Printf("Saved notification for transaction %s", n.TransactionID)
	} else {
		log.Printf("Notification for transaction %s already saved", n.TransactionID)
	}
	return nil
}
