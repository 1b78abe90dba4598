package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/chris/funding-ledger/pkg/storage/dynamodb/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testTables = Tables{
	Accounts:      "accounts",
	Transactions:  "transactions",
	Idempotency:   "idempotency",
	Notifications: "notifications",
	Projects:      "projects",
}

func accountAV(t *testing.T, id, balance string, version int64) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(toAccountItem(&models.Account{
		ID:        id,
		Balance:   decimal.RequireFromString(balance),
		Version:   version,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, err)
	return av
}

func TestCreateAccount(t *testing.T) {
	account := &models.Account{ID: "test-user", Balance: decimal.NewFromInt(50)}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
			n, ok := in.Item["balance"].(*types.AttributeValueMemberN)
			return *in.TableName == "accounts" && ok && n.Value == "0"
		})).Return(&dynamodb.PutItemOutput{}, nil)

		store := New(mockClient, testTables)
		created, err := store.CreateAccount(context.Background(), account)

		assert.NoError(t, err)
		assert.Equal(t, "test-user", created.ID)
		assert.True(t, created.Balance.IsZero())
		mockClient.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

		store := New(mockClient, testTables)
		_, err := store.CreateAccount(context.Background(), account)

		assert.ErrorIs(t, err, storage.ErrAccountExists)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("some other storage error"))

		store := New(mockClient, testTables)
		_, err := store.CreateAccount(context.Background(), account)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account in DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestGetAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: accountAV(t, "acc", "12.34", 3)}, nil)

		store := New(mockClient, testTables)
		acc, err := store.GetAccount(context.Background(), "acc")

		require.NoError(t, err)
		assert.Equal(t, "12.34", acc.Balance.String())
		assert.Equal(t, int64(3), acc.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		store := New(mockClient, testTables)
		_, err := store.GetAccount(context.Background(), "acc")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		store := New(mockClient, testTables)
		_, err := store.GetAccount(context.Background(), "acc")

		assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
		mockClient.AssertExpectations(t)
	})
}

func TestListAccounts(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey == nil
	})).Return(&dynamodb.ScanOutput{
		Items:            []map[string]types.AttributeValue{accountAV(t, "a", "1", 1)},
		LastEvaluatedKey: map[string]types.AttributeValue{"account_id": &types.AttributeValueMemberS{Value: "a"}},
	}, nil).Once()
	mockClient.On("Scan", mock.Anything, mock.MatchedBy(func(in *dynamodb.ScanInput) bool {
		return in.ExclusiveStartKey != nil
	})).Return(&dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{accountAV(t, "b", "2", 1)},
	}, nil).Once()

	store := New(mockClient, testTables)
	accounts, err := store.ListAccounts(context.Background())

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a", accounts[0].ID)
	assert.Equal(t, "b", accounts[1].ID)
	mockClient.AssertExpectations(t)
}

func TestGetAccountByReferralCode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
			return *in.IndexName == referralCodeIndex
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{accountAV(t, "owner", "0", 0)}}, nil)

		store := New(mockClient, testTables)
		acc, err := store.GetAccountByReferralCode(context.Background(), "REF")

		require.NoError(t, err)
		assert.Equal(t, "owner", acc.ID)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

		store := New(mockClient, testTables)
		_, err := store.GetAccountByReferralCode(context.Background(), "REF")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
	})
}
