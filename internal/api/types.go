package api

import "github.com/vihar-s1/bytechef/internal/workflow/domain"

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// APIError is the body of every non-2xx response.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
	// Format is set for invalid_definition errors.
	Format string `json:"format,omitempty"`
	// CurrentVersion is set for version_conflict errors.
	CurrentVersion int `json:"currentVersion,omitempty"`
}

// Error codes.
const (
	CodeInvalidJSON       = "invalid_json"
	CodeInvalidRequest    = "invalid_request"
	CodeInvalidDefinition = "invalid_definition"
	CodeNotFound          = "not_found"
	CodeVersionConflict   = "version_conflict"
	CodeRunDisabled       = "run_disabled"
	CodeInternal          = "internal"
)

// WorkflowResponse is a workflow plus whether a test run can be started.
type WorkflowResponse struct {
	*domain.Workflow
	RunDisabled bool `json:"runDisabled"`
}

// WorkflowListResponse is returned by GET /api/workflows.
type WorkflowListResponse struct {
	Workflows []*domain.Workflow `json:"workflows"`
}

// CreateWorkflowRequest is the body of POST /api/workflows.
type CreateWorkflowRequest struct {
	Label      string `json:"label"`
	Format     string `json:"format"`
	Definition string `json:"definition"`
}

// UpdateWorkflowRequest is the body of PUT /api/workflows/{id}.
type UpdateWorkflowRequest struct {
	Definition string `json:"definition"`
	Version    int    `json:"version"`
}

// TestConfigurationRequest is the body of PUT /api/workflows/{id}/test-configuration.
type TestConfigurationRequest struct {
	Inputs      map[string]string `json:"inputs"`
	Connections map[string]string `json:"connections"`
}
