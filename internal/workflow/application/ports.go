// Package application coordinates workflow storage, validation and test runs.
package application

import (
	"context"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// WorkflowRepository stores workflows.
type WorkflowRepository interface {
	Get(ctx context.Context, id string) (*domain.Workflow, error)
	List(ctx context.Context) ([]*domain.Workflow, error)
	Create(ctx context.Context, wf *domain.Workflow) error
	// Update replaces the stored workflow if its version still equals
	// expectedVersion. Returns *domain.VersionConflictError otherwise and
	// *domain.WorkflowNotFoundError if the workflow does not exist.
	Update(ctx context.Context, wf *domain.Workflow, expectedVersion int) error
	Delete(ctx context.Context, id string) error
}

// TestConfigurationRepository stores per-workflow test configurations.
type TestConfigurationRepository interface {
	// Get returns the stored configuration, or an empty one if none was saved.
	Get(ctx context.Context, workflowID string) (*domain.TestConfiguration, error)
	Save(ctx context.Context, cfg *domain.TestConfiguration) error
}

// TestExecutor runs a workflow once for testing.
type TestExecutor interface {
	Execute(ctx context.Context, wf *domain.Workflow, cfg *domain.TestConfiguration) (*domain.TestExecution, error)
}
