package storage

import (
	"context"

	"github.com/chris/funding-ledger/pkg/models"
)

// ProjectStore persists projects created after the start fee is charged.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID string) ([]models.Project, error)
}
