package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

const (
	accountSeqIndex  = "account_id-seq-index"
	referenceIDIndex = "reference_id-index"
)

// Positions inside the TransactWriteItems call, used to read cancellation reasons.
const (
	accountUpdateItem = iota
	recordPutItem
	idempotencyPutItem
)

// GetBalance returns the committed balance of an account.
func (s *Store) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	acc, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// ApplyDelta writes the new balance, the ledger record and the idempotency marker in
// a single TransactWriteItems call. The account update is conditioned on the version
// read just before, so a concurrent writer makes the whole unit fail.
func (s *Store) ApplyDelta(ctx context.Context, rec *models.TransactionRecord, allowOverdraft bool) (decimal.Decimal, error) {
	// 1. Get the current state of the account.
	acc, err := s.GetAccount(ctx, rec.AccountID)
	if err != nil {
		return decimal.Zero, err
	}

	// 2. Compute the new balance and complete the record.
	newBalance := acc.Balance.Add(rec.Amount)
	if newBalance.IsNegative() && !allowOverdraft {
		return decimal.Zero, storage.ErrInsufficientFunds
	}

	committed := *rec
	committed.BalanceAfter = newBalance
	committed.Status = models.COMMITTED
	if committed.Timestamp.IsZero() {
		committed.Timestamp = time.Now()
	}

	slog.Log(ctx, slog.LevelDebug, "applying ledger delta", "transaction_id", committed.ID, "account_id", committed.AccountID, "amount", committed.Amount.String())

	// The version condition below makes acc.Version+1 unique per account.
	recordAV, err := attributevalue.MarshalMap(toRecordItem(&committed, acc.Version+1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal transaction record: %w", err)
	}

	// 3. Construct the TransactWriteItems input.
	transactItems := []types.TransactWriteItem{
		{
			// Operation 1: Update the account balance.
			Update: &types.Update{
				TableName: aws.String(s.Tables.Accounts),
				Key: map[string]types.AttributeValue{
					"account_id": &types.AttributeValueMemberS{Value: committed.AccountID},
				},
				UpdateExpression:    aws.String("SET balance = :balance, version = version + :inc"),
				ConditionExpression: aws.String("version = :version"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":balance": &types.AttributeValueMemberN{Value: newBalance.String()},
					":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(acc.Version, 10)},
					":inc":     &types.AttributeValueMemberN{Value: "1"},
				},
			},
		},
		{
			// Operation 2: Append the ledger record.
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Transactions),
				Item:                recordAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
	}
	if committed.IdempotencyKey != "" {
		keyAV, err := attributevalue.MarshalMap(idempotencyItem{
			IdempotencyKey: committed.IdempotencyKey,
			TransactionID:  committed.ID,
		})
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to marshal idempotency key: %w", err)
		}
		// Operation 3: Claim the idempotency key.
		transactItems = append(transactItems, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.Tables.Idempotency),
				Item:                keyAV,
				ConditionExpression: aws.String("attribute_not_exists(idempotency_key)"),
			},
		})
	}

	// 4. Execute the transaction.
	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: transactItems})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			if conditionFailed(tce, idempotencyPutItem) {
				return decimal.Zero, storage.ErrDuplicateIdempotencyKey
			}
			if conditionFailed(tce, accountUpdateItem) {
				return decimal.Zero, storage.ErrConcurrentUpdate
			}
		}
		return decimal.Zero, fmt.Errorf("failed to execute ledger transaction: %w: %w", storage.ErrStorageUnavailable, err)
	}

	*rec = committed
	return newBalance, nil
}

func conditionFailed(tce *types.TransactionCanceledException, idx int) bool {
	if idx >= len(tce.CancellationReasons) {
		return false
	}
	return aws.ToString(tce.CancellationReasons[idx].Code) == "ConditionalCheckFailed"
}

// GetTransaction retrieves a single ledger record by ID.
func (s *Store) GetTransaction(ctx context.Context, id string) (*models.TransactionRecord, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Transactions),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w: %w", storage.ErrStorageUnavailable, err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrTransactionNotFound, id)
	}

	var item recordItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return item.toModel()
}

// ListTransactionsByAccount queries the account/seq index, so records come back in
// commit order even when timestamps tie. With a positive limit the most recent
// records are returned, still in ascending order.
func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID string, limit int32) ([]models.TransactionRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Transactions),
		IndexName:              aws.String(accountSeqIndex),
		KeyConditionExpression: aws.String("account_id = :accountID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":accountID": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(limit <= 0),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	var records []models.TransactionRecord
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query transactions by account: %w: %w", storage.ErrStorageUnavailable, err)
		}

		var items []recordItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		for _, item := range items {
			rec, err := item.toModel()
			if err != nil {
				return nil, err
			}
			records = append(records, *rec)
		}

		if limit > 0 || len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	if limit > 0 {
		slices.Reverse(records)
	}
	return records, nil
}

// FindByIdempotencyKey resolves the key through the idempotency table.
func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*models.TransactionRecord, error) {
	keyAV, err := attributevalue.MarshalMap(map[string]string{"idempotency_key": key})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal idempotency key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Idempotency),
		Key:            keyAV,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w: %w", storage.ErrStorageUnavailable, err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("%w: key %s", storage.ErrTransactionNotFound, key)
	}

	var item idempotencyItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency key: %w", err)
	}
	return s.GetTransaction(ctx, item.TransactionID)
}

// FindRefundFor queries the sparse reference_id index for a REFUND record.
func (s *Store) FindRefundFor(ctx context.Context, originalID string) (*models.TransactionRecord, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Transactions),
		IndexName:              aws.String(referenceIDIndex),
		KeyConditionExpression: aws.String("reference_id = :ref"),
		FilterExpression:       aws.String("#kind = :kind"),
		ExpressionAttributeNames: map[string]string{
			"#kind": "kind",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ref":  &types.AttributeValueMemberS{Value: originalID},
			":kind": &types.AttributeValueMemberS{Value: string(models.REFUND)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query refund for transaction: %w: %w", storage.ErrStorageUnavailable, err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("%w: refund for %s", storage.ErrTransactionNotFound, originalID)
	}

	var item recordItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refund: %w", err)
	}
	return item.toModel()
}
