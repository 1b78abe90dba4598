package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/chris/funding-ledger/pkg/models"
)

// SQSAPI is the subset of the SQS client used by SQSSender.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSSender implements the Sender interface using AWS SQS. The notification
// lambda consumes the queue and persists each message.
type SQSSender struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSSender creates a new SQSSender.
func NewSQSSender(client SQSAPI, queueURL string) *SQSSender {
	return &SQSSender{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Sender = (*SQSSender)(nil)

// Send enqueues the notification on SQS.
func (s *SQSSender) Send(ctx context.Context, n *models.Notification) error {
	// Marshal the notification to JSON.
	body, err := json.Marshal(Message{Type: MessageTypeNotification, Notification: n})
	if err != nil {
		return fmt.Errorf("failed to marshal notification for SQS: %w", err)
	}

	// Send the message to SQS.
	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"transaction_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.TransactionID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
