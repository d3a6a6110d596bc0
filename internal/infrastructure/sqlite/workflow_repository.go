package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/workflow/application"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

const workflowColumns = `id, label, description, format, definition, version, created_at, updated_at, deleted_at`

// workflowRepository implements application.WorkflowRepository using SQLite.
type workflowRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newWorkflowRepository(db *sql.DB) *workflowRepository {
	return &workflowRepository{db: db, now: time.Now}
}

var _ application.WorkflowRepository = (*workflowRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*WorkflowModel, error) {
	var m WorkflowModel
	err := row.Scan(&m.ID, &m.Label, &m.Description, &m.Format, &m.Definition, &m.Version, &m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	return &m, err
}

// Get returns a workflow by ID. Soft-deleted workflows are not returned.
func (r *workflowRepository) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	m, err := scanWorkflow(r.db.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE id = ? AND deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.WorkflowNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return m.toDomain(), nil
}

// List returns all live workflows ordered by label.
func (r *workflowRepository) List(ctx context.Context) ([]*domain.Workflow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE deleted_at IS NULL ORDER BY label COLLATE NOCASE, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var workflows []*domain.Workflow
	for rows.Next() {
		m, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workflows: %w", err)
	}
	return workflows, nil
}

// Create inserts a new workflow.
func (r *workflowRepository) Create(ctx context.Context, wf *domain.Workflow) error {
	m := toWorkflowModel(wf)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workflows (id, label, description, format, definition, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Label, m.Description, m.Format, m.Definition, m.Version, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert workflow: %w", err)
	}
	log.Debug(log.CatDB, "Inserted workflow", "id", wf.ID)
	return nil
}

// Update stores wf if the stored version still equals expectedVersion.
// Returns *domain.VersionConflictError when another writer got there first.
func (r *workflowRepository) Update(ctx context.Context, wf *domain.Workflow, expectedVersion int) error {
	m := toWorkflowModel(wf)
	res, err := r.db.ExecContext(ctx,
		`UPDATE workflows SET label = ?, description = ?, definition = ?, version = ?, updated_at = ?
		 WHERE id = ? AND version = ? AND deleted_at IS NULL`,
		m.Label, m.Description, m.Definition, m.Version, m.UpdatedAt, m.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	current, err := r.Get(ctx, wf.ID)
	if err != nil {
		return err
	}
	return &domain.VersionConflictError{ID: wf.ID, Expected: expectedVersion, Actual: current.Version}
}

// Delete soft-deletes a workflow.
func (r *workflowRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE workflows SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		r.now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &domain.WorkflowNotFoundError{ID: id}
	}
	return nil
}
