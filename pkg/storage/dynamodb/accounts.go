package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/shopspring/decimal"
)

const referralCodeIndex = "referral_code-index"

// CreateAccount creates a new account record with a zero balance.
func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	acc := *account
	acc.Balance = decimal.Zero
	acc.Version = 0
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}

	accountAV, err := attributevalue.MarshalMap(toAccountItem(&acc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Accounts),
		Item:                accountAV,
		ConditionExpression: aws.String("attribute_not_exists(account_id)"), // Prevent overwriting existing accounts.
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("%w: account %s", storage.ErrAccountExists, acc.ID)
		}
		return nil, fmt.Errorf("failed to create account in DynamoDB: %w", err)
	}

	return &acc, nil
}

// GetAccount retrieves an account with a strongly consistent read.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Accounts),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account from DynamoDB: %w: %w", storage.ErrStorageUnavailable, err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrAccountNotFound, accountID)
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return item.toModel()
}

// GetAccountByReferralCode queries the referral code index.
func (s *Store) GetAccountByReferralCode(ctx context.Context, code string) (*models.Account, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Accounts),
		IndexName:              aws.String(referralCodeIndex),
		KeyConditionExpression: aws.String("referral_code = :code"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query account by referral code: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("%w: referral code %s", storage.ErrAccountNotFound, code)
	}

	var item accountItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return item.toModel()
}

// ListAccounts scans the accounts table, following pagination.
func (s *Store) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.Tables.Accounts),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan accounts: %w", err)
		}

		var items []accountItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
		}
		for _, item := range items {
			acc, err := item.toModel()
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, *acc)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	return accounts, nil
}
