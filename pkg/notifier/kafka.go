package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaSender.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes notifications to a Kafka topic keyed by transaction ID,
// so redeliveries of the same notification land on the same partition.
type KafkaSender struct {
	writer MessageWriter
}

var _ Sender = (*KafkaSender)(nil)

// NewKafkaSender creates a sender writing to topic on brokers.
func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

// NewKafkaSenderWithWriter wraps an existing writer.
func NewKafkaSenderWithWriter(w MessageWriter) *KafkaSender {
	return &KafkaSender{writer: w}
}

// Send publishes the notification.
func (k *KafkaSender) Send(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(Message{Type: MessageTypeNotification, Notification: n})
	if err != nil {
		return fmt.Errorf("failed to marshal notification for Kafka: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.TransactionID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (k *KafkaSender) Close() error {
	return k.writer.Close()
}
