package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vihar-s1/bytechef/internal/workflow/application"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// testConfigurationRepository implements application.TestConfigurationRepository using SQLite.
type testConfigurationRepository struct {
	db *sql.DB
}

func newTestConfigurationRepository(db *sql.DB) *testConfigurationRepository {
	return &testConfigurationRepository{db: db}
}

var _ application.TestConfigurationRepository = (*testConfigurationRepository)(nil)

// Get returns the test configuration of a workflow, or an empty one if
// none has been saved.
func (r *testConfigurationRepository) Get(ctx context.Context, workflowID string) (*domain.TestConfiguration, error) {
	var m TestConfigurationModel
	err := r.db.QueryRowContext(ctx,
		`SELECT workflow_id, inputs, connections, updated_at FROM workflow_test_configurations WHERE workflow_id = ?`,
		workflowID,
	).Scan(&m.WorkflowID, &m.Inputs, &m.Connections, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.TestConfiguration{WorkflowID: workflowID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get test configuration: %w", err)
	}
	return m.toDomain()
}

// Save inserts or replaces the test configuration of a workflow.
func (r *testConfigurationRepository) Save(ctx context.Context, cfg *domain.TestConfiguration) error {
	m, err := toTestConfigurationModel(cfg)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO workflow_test_configurations (workflow_id, inputs, connections, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(workflow_id) DO UPDATE SET
		     inputs = excluded.inputs,
		     connections = excluded.connections,
		     updated_at = excluded.updated_at`,
		m.WorkflowID, m.Inputs, m.Connections, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save test configuration: %w", err)
	}
	return nil
}
