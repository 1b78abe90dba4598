package provisioner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/google/uuid"
)

// DefaultProjectName is used when a project is started without a name.
const DefaultProjectName = "Unnamed Project"

// projectNamespace derives stable project IDs from idempotency keys.
var projectNamespace = uuid.MustParse("6f1c52a4-2b7e-4f0a-9a51-0b8c1d7e4a10")

// ProjectInput is what the owner supplies when starting a project.
type ProjectInput struct {
	ProjectName string
	Description string
	ConfigID    string
	Data        map[string]any
	// IdempotencyKey makes a retried start return the same project.
	IdempotencyKey string
}

// ProjectService starts projects behind the project start fee.
type ProjectService struct {
	provisioner *Provisioner
	projects    storage.ProjectStore
}

// NewProjectService creates a ProjectService.
func NewProjectService(p *Provisioner, projects storage.ProjectStore) *ProjectService {
	return &ProjectService{provisioner: p, projects: projects}
}

// StartProject charges the start fee, then persists the project. A failed
// insert refunds the fee.
func (s *ProjectService) StartProject(ctx context.Context, ownerID string, in ProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(in.ProjectName)
	if name == "" {
		name = DefaultProjectName
	}

	projectID := uuid.NewString()
	feeKey := ""
	if in.IdempotencyKey != "" {
		projectID = uuid.NewSHA1(projectNamespace, []byte(ownerID+":"+in.IdempotencyKey)).String()
		feeKey = "project:" + projectID
	}

	var created *models.Project
	_, err := s.provisioner.Provision(ctx, models.OperationRequest{
		AccountID:      ownerID,
		Kind:           models.PROJECT_FEE,
		IdempotencyKey: feeKey,
		Description:    "Project start fee: " + name,
	}, func(ctx context.Context, fee *models.TransactionRecord) error {
		p, err := s.projects.CreateProject(ctx, &models.Project{
			ID:               projectID,
			OwnerID:          ownerID,
			ConfigID:         in.ConfigID,
			ProjectName:      name,
			Description:      in.Description,
			Data:             in.Data,
			FeeTransactionID: fee.ID,
		})
		if errors.Is(err, storage.ErrProjectExists) {
			existing, gerr := s.projects.GetProject(ctx, projectID)
			if gerr == nil && existing.FeeTransactionID == fee.ID {
				created = existing
				return nil
			}
		}
		if err != nil {
			return err
		}
		created = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start project: %w", err)
	}
	return created, nil
}
