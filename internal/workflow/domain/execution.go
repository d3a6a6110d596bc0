package domain

import "time"

// ExecutionStatus is the outcome of a test execution or one of its tasks.
type ExecutionStatus string

const (
	StatusCompleted ExecutionStatus = "COMPLETED"
	StatusFailed    ExecutionStatus = "FAILED"
	StatusCancelled ExecutionStatus = "CANCELLED"
)

// TaskExecution is the result of one task in a test run.
type TaskExecution struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Status    ExecutionStatus `json:"status"`
	StartedAt time.Time       `json:"startedAt"`
	EndedAt   time.Time       `json:"endedAt"`
	Output    map[string]any  `json:"output,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// TestExecution is the result of a one-shot test run of a workflow.
type TestExecution struct {
	ID         string            `json:"id"`
	WorkflowID string            `json:"workflowId"`
	Status     ExecutionStatus   `json:"status"`
	StartedAt  time.Time         `json:"startedAt"`
	EndedAt    time.Time         `json:"endedAt"`
	Inputs     map[string]string `json:"inputs,omitempty"`
	Outputs    map[string]any    `json:"outputs,omitempty"`
	Tasks      []TaskExecution   `json:"tasks"`
	Error      string            `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (e *TestExecution) Duration() time.Duration {
	if e == nil || e.EndedAt.Before(e.StartedAt) {
		return 0
	}
	return e.EndedAt.Sub(e.StartedAt)
}
