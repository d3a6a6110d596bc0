// Package testexec runs workflow definitions in dry-run mode for the editor's
// test button.
//
// A dry run does not call any component. Each task is "executed" by resolving
// its parameters against the test configuration inputs and echoing them back
// as the task output, which is enough to check that a definition is wired up
// before it is deployed.
package testexec

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/workflow/definition"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

var inputRef = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}`)

// DryRunExecutor implements application.TestExecutor.
type DryRunExecutor struct {
	taskDelay time.Duration
	now       func() time.Time
	newID     func() string
}

// Option configures a DryRunExecutor.
type Option func(*DryRunExecutor)

// WithTaskDelay waits d before each task. Cancellation is observed during the wait.
func WithTaskDelay(d time.Duration) Option {
	return func(e *DryRunExecutor) { e.taskDelay = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *DryRunExecutor) { e.now = now }
}

// WithIDGenerator overrides the execution ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(e *DryRunExecutor) { e.newID = newID }
}

// NewDryRunExecutor creates a DryRunExecutor.
func NewDryRunExecutor(opts ...Option) *DryRunExecutor {
	e := &DryRunExecutor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs every task of wf in order.
//
// When ctx is cancelled between tasks the remaining tasks are skipped, the
// execution is returned with status CANCELLED and the context error.
func (e *DryRunExecutor) Execute(ctx context.Context, wf *domain.Workflow, cfg *domain.TestConfiguration) (*domain.TestExecution, error) {
	doc, err := definition.Parse(wf.Format, wf.Definition)
	if err != nil {
		return nil, err
	}

	var inputs map[string]string
	if cfg != nil {
		inputs = cfg.Inputs
	}

	exec := &domain.TestExecution{
		ID:         e.newID(),
		WorkflowID: wf.ID,
		Status:     domain.StatusCompleted,
		StartedAt:  e.now(),
		Inputs:     copyInputs(inputs),
		Outputs:    make(map[string]any, len(doc.Tasks)),
		Tasks:      make([]domain.TaskExecution, 0, len(doc.Tasks)),
	}

	for i, task := range doc.Tasks {
		if err := e.wait(ctx); err != nil {
			exec.Status = domain.StatusCancelled
			exec.Error = err.Error()
			exec.EndedAt = e.now()
			log.Debug(log.CatExec, "Dry run cancelled", "workflow", wf.ID, "execution", exec.ID, "completedTasks", i)
			return exec, err
		}

		name := task.Name
		if name == "" {
			name = fmt.Sprintf("task_%d", i+1)
		}

		te := domain.TaskExecution{
			Name:      name,
			Type:      task.Type,
			StartedAt: e.now(),
		}
		if task.Type == "" {
			te.Status = domain.StatusFailed
			te.Error = "task type is required"
		} else {
			te.Status = domain.StatusCompleted
			te.Output = resolve(task.Parameters, inputs).(map[string]any)
			exec.Outputs[name] = te.Output
		}
		te.EndedAt = e.now()
		exec.Tasks = append(exec.Tasks, te)

		if te.Status == domain.StatusFailed {
			exec.Status = domain.StatusFailed
			exec.Error = fmt.Sprintf("task %s: %s", name, te.Error)
			break
		}
	}

	exec.EndedAt = e.now()
	log.Debug(log.CatExec, "Dry run finished", "workflow", wf.ID, "execution", exec.ID, "status", exec.Status, "tasks", len(exec.Tasks))
	return exec, nil
}

func (e *DryRunExecutor) wait(ctx context.Context) error {
	if e.taskDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.taskDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// resolve substitutes ${name} references with test inputs. Unknown
// references are left untouched. Nil parameters resolve to an empty map.
func resolve(v any, inputs map[string]string) any {
	switch val := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				out[k] = nil
				continue
			}
			out[k] = resolve(item, inputs)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			if item == nil {
				continue
			}
			out[i] = resolve(item, inputs)
		}
		return out
	case string:
		return inputRef.ReplaceAllStringFunc(val, func(ref string) string {
			name := inputRef.FindStringSubmatch(ref)[1]
			if in, ok := inputs[name]; ok {
				return in
			}
			return ref
		})
	default:
		return val
	}
}

func copyInputs(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
