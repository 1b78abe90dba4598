package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/funding-ledger/pkg/models"
)

// SaveNotification puts the notification unless one already exists for the transaction.
func (s *Store) SaveNotification(ctx context.Context, n *models.Notification) (bool, error) {
	stored := *n
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}

	item, err := attributevalue.MarshalMap(toNotificationItem(&stored))
	if err != nil {
		return false, fmt.Errorf("failed to marshal notification: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Notifications),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(transaction_id)"),
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return false, nil
		}
		return false, fmt.Errorf("failed to put notification: %w", err)
	}

	return true, nil
}

// ListNotifications returns an account's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, accountID string) ([]models.Notification, error) {
	return s.queryNotifications(ctx, accountID, false)
}

// MarkNotificationsRead updates every unread notification of the account.
func (s *Store) MarkNotificationsRead(ctx context.Context, accountID string) (int, error) {
	unread, err := s.queryNotifications(ctx, accountID, true)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, n := range unread {
		_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(s.Tables.Notifications),
			Key: map[string]types.AttributeValue{
				"account_id":     &types.AttributeValueMemberS{Value: n.AccountID},
				"transaction_id": &types.AttributeValueMemberS{Value: n.TransactionID},
			},
			UpdateExpression: aws.String("SET #read = :true"),
			ExpressionAttributeNames: map[string]string{
				"#read": "read",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":true": &types.AttributeValueMemberBOOL{Value: true},
			},
		})
		if err != nil {
			return count, fmt.Errorf("failed to mark notification %s read: %w", n.TransactionID, err)
		}
		count++
	}

	return count, nil
}

func (s *Store) queryNotifications(ctx context.Context, accountID string, unreadOnly bool) ([]models.Notification, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Notifications),
		KeyConditionExpression: aws.String("account_id = :accountID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":accountID": &types.AttributeValueMemberS{Value: accountID},
		},
	}
	if unreadOnly {
		input.FilterExpression = aws.String("#read = :false")
		input.ExpressionAttributeNames = map[string]string{"#read": "read"}
		input.ExpressionAttributeValues[":false"] = &types.AttributeValueMemberBOOL{Value: false}
	}

	var notifications []models.Notification
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query notifications: %w", err)
		}

		var items []notificationItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notifications: %w", err)
		}
		for _, item := range items {
			n, err := item.toModel()
			if err != nil {
				return nil, err
			}
			notifications = append(notifications, n)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].Timestamp.After(notifications[j].Timestamp)
	})
	return notifications, nil
}
