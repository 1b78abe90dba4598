package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chris/funding-ledger/pkg/models"
	"github.com/chris/funding-ledger/pkg/storage"
)

const projectColumns = `id, owner_id, config_id, project_name, description, data, fee_transaction_id, created_at`

// CreateProject inserts a new project. Data is stored as a JSON document.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	p := *project
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	data := p.Data
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project data: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.OwnerID, nullString(p.ConfigID), p.ProjectName, p.Description, string(raw), p.FeeTransactionID, toNanos(p.CreatedAt))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %s", storage.ErrProjectExists, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p         models.Project
		configID  sql.NullString
		raw       string
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &configID, &p.ProjectName, &p.Description, &raw, &p.FeeTransactionID, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &p.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project data: %w", err)
	}
	p.ConfigID = configID.String
	p.CreatedAt = fromNanos(createdAt)
	return &p, nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	return p, nil
}

// ListProjectsByOwner returns an owner's projects, oldest first.
func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID string) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+projectColumns+` FROM projects WHERE owner_id = ? ORDER BY created_at`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}
