package domain

import (
	"errors"
	"fmt"
)

// ErrRunDisabled is returned when a test run is requested while required
// inputs are missing from the test configuration.
var ErrRunDisabled = errors.New("workflow cannot be executed: required inputs are missing")

// WorkflowNotFoundError indicates that no workflow with the given ID exists.
type WorkflowNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("workflow not found: id=%q", e.ID)
}

// VersionConflictError indicates that a save was based on a stale version.
type VersionConflictError struct {
	ID       string
	Expected int
	Actual   int
}

// Error implements the error interface.
func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("workflow version conflict: id=%q expected=%d actual=%d", e.ID, e.Expected, e.Actual)
}

// InvalidDefinitionError indicates that a definition does not parse in its format.
type InvalidDefinitionError struct {
	Format Format
	Err    error
}

// Error implements the error interface.
func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid %s definition: %v", e.Format, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *InvalidDefinitionError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a WorkflowNotFoundError.
func IsNotFound(err error) bool {
	var nf *WorkflowNotFoundError
	return errors.As(err, &nf)
}

// IsVersionConflict reports whether err is a VersionConflictError.
func IsVersionConflict(err error) bool {
	var vc *VersionConflictError
	return errors.As(err, &vc)
}

// IsInvalidDefinition reports whether err is an InvalidDefinitionError.
func IsInvalidDefinition(err error) bool {
	var inv *InvalidDefinitionError
	return errors.As(err, &inv)
}
