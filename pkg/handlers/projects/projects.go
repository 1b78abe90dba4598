package projects

import (
	"context"
	"net/http"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/handlers/respond"
	"github.com/chris/funding-ledger/pkg/mapping"
	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/provisioner"
	"github.com/chris/funding-ledger/pkg/storage"
)

// ProjectStarter charges the start fee and creates the project.
type ProjectStarter interface {
	StartProject(ctx context.Context, ownerID string, in provisioner.ProjectInput) (*models.Project, error)
}

// ProjectsHandler holds the dependencies for project-related handlers.
type ProjectsHandler struct {
	Starter ProjectStarter
	Store   storage.ProjectStore
}

// NewProjectsHandler creates a new ProjectsHandler.
func NewProjectsHandler(starter ProjectStarter, store storage.ProjectStore) *ProjectsHandler {
	return &ProjectsHandler{Starter: starter, Store: store}
}

// StartProject handles the logic for starting a project.
func (h *ProjectsHandler) StartProject(w http.ResponseWriter, r *http.Request, params api.StartProjectParams) {
	var newProject api.NewProject
	if err := respond.DecodeJSON(r, &newProject); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	if newProject.OwnerId == "" {
		respond.BadRequest(w, "owner_id is required")
		return
	}

	project, err := h.Starter.StartProject(r.Context(), newProject.OwnerId, mapping.ToDomainProjectInput(&newProject, params.IdempotencyKey))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiProject(project))
}

// ListProjects handles the logic for listing an owner's projects.
func (h *ProjectsHandler) ListProjects(w http.ResponseWriter, r *http.Request, accountId string) {
	domainProjects, err := h.Store.ListProjectsByOwner(r.Context(), accountId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	apiProjects := make([]*api.Project, len(domainProjects))
	for i := range domainProjects {
		apiProjects[i] = mapping.ToApiProject(&domainProjects[i])
	}
	respond.JSON(w, http.StatusOK, apiProjects)
}
