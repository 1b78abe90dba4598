package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/chris/funding-ledger/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	project := &models.Project{ID: "p1", OwnerID: "acc", ProjectName: "Solar", Data: map[string]any{"goal": "roofs"}}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(&dynamodb.PutItemOutput{}, nil)

		store := New(mockClient, testTables)
		created, err := store.CreateProject(context.Background(), project)

		require.NoError(t, err)
		assert.False(t, created.CreatedAt.IsZero())
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("PutItem", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		store := New(mockClient, testTables)
		_, err := store.CreateProject(context.Background(), project)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create project in DynamoDB")
	})
}

func TestGetProject(t *testing.T) {
	item, err := attributevalue.MarshalMap(toProjectItem(&models.Project{ID: "p1", OwnerID: "acc", ProjectName: "Solar"}))
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		store := New(mockClient, testTables)
		p, err := store.GetProject(context.Background(), "p1")

		require.NoError(t, err)
		assert.Equal(t, "Solar", p.ProjectName)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		store := New(mockClient, testTables)
		_, err := store.GetProject(context.Background(), "p1")

		assert.ErrorIs(t, err, storage.ErrProjectNotFound)
	})

	t.Run("List by owner", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil)

		store := New(mockClient, testTables)
		list, err := store.ListProjectsByOwner(context.Background(), "acc")

		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}
