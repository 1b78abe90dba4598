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
)

const ownerIDIndex = "owner_id-index"

// CreateProject stores a new project.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	p := *project
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	item, err := attributevalue.MarshalMap(toProjectItem(&p))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Projects),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, fmt.Errorf("%w: %s", storage.ErrProjectExists, p.ID)
		}
		return nil, fmt.Errorf("failed to create project in DynamoDB: %w", err)
	}

	return &p, nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Projects),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get project from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrProjectNotFound, id)
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return item.toModel()
}

// ListProjectsByOwner queries the owner index.
func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID string) ([]models.Project, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Projects),
		IndexName:              aws.String(ownerIDIndex),
		KeyConditionExpression: aws.String("owner_id = :ownerID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ownerID": &types.AttributeValueMemberS{Value: ownerID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query projects by owner: %w", err)
	}

	var items []projectItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal projects: %w", err)
	}

	projects := make([]models.Project, 0, len(items))
	for _, item := range items {
		p, err := item.toModel()
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, nil
}
