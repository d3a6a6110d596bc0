package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// WorkflowModel is a row of the workflows table. Times are Unix seconds.
type WorkflowModel struct {
	ID          string
	Label       string
	Description string
	Format      string
	Definition  string
	Version     int
	CreatedAt   int64
	UpdatedAt   int64
	DeletedAt   *int64 // nullable
}

func toWorkflowModel(wf *domain.Workflow) *WorkflowModel {
	return &WorkflowModel{
		ID:          wf.ID,
		Label:       wf.Label,
		Description: wf.Description,
		Format:      string(wf.Format),
		Definition:  wf.Definition,
		Version:     wf.Version,
		CreatedAt:   wf.CreatedAt.Unix(),
		UpdatedAt:   wf.UpdatedAt.Unix(),
	}
}

func (m *WorkflowModel) toDomain() *domain.Workflow {
	return &domain.Workflow{
		ID:          m.ID,
		Label:       m.Label,
		Description: m.Description,
		Format:      domain.Format(m.Format),
		Definition:  m.Definition,
		Version:     m.Version,
		CreatedAt:   time.Unix(m.CreatedAt, 0).UTC(),
		UpdatedAt:   time.Unix(m.UpdatedAt, 0).UTC(),
	}
}

// TestConfigurationModel is a row of the workflow_test_configurations
// table. Inputs and connections are stored as JSON objects.
type TestConfigurationModel struct {
	WorkflowID  string
	Inputs      string
	Connections string
	UpdatedAt   int64
}

func toTestConfigurationModel(cfg *domain.TestConfiguration) (*TestConfigurationModel, error) {
	inputs, err := encodeMap(cfg.Inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}
	connections, err := encodeMap(cfg.Connections)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connections: %w", err)
	}
	return &TestConfigurationModel{
		WorkflowID:  cfg.WorkflowID,
		Inputs:      inputs,
		Connections: connections,
		UpdatedAt:   cfg.UpdatedAt.Unix(),
	}, nil
}

func (m *TestConfigurationModel) toDomain() (*domain.TestConfiguration, error) {
	cfg := &domain.TestConfiguration{
		WorkflowID: m.WorkflowID,
		UpdatedAt:  time.Unix(m.UpdatedAt, 0).UTC(),
	}
	if err := json.Unmarshal([]byte(m.Inputs), &cfg.Inputs); err != nil {
		return nil, fmt.Errorf("failed to decode inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(m.Connections), &cfg.Connections); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}
	return cfg, nil
}

func encodeMap(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	return string(data), err
}
