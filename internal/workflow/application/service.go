package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/workflow/definition"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

const tracerName = "github.com/vihar-s1/bytechef/internal/workflow/application"

// Config wires a Service.
type Config struct {
	Workflows          WorkflowRepository
	TestConfigurations TestConfigurationRepository
	Executor           TestExecutor
	// CacheTTL is how long workflows stay cached. Zero disables the cache.
	CacheTTL time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service implements workflow use cases on top of the repositories.
type Service struct {
	workflows   WorkflowRepository
	testConfigs TestConfigurationRepository
	executor    TestExecutor
	cache       *cache.Cache
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService creates a Service.
func NewService(cfg Config) *Service {
	s := &Service{
		workflows:   cfg.Workflows,
		testConfigs: cfg.TestConfigurations,
		executor:    cfg.Executor,
		tracer:      otel.Tracer(tracerName),
		now:         cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if cfg.CacheTTL > 0 {
		// No janitor goroutine: expired entries are skipped on read and
		// purged on List.
		s.cache = cache.New(cfg.CacheTTL, 0)
	}
	return s
}

// GetWorkflow returns the workflow with the given ID.
func (s *Service) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.get", trace.WithAttributes(attribute.String("workflow.id", id)))
	defer span.End()

	if s.cache != nil {
		if v, ok := s.cache.Get(id); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			wf := *v.(*domain.Workflow)
			return &wf, nil
		}
	}

	wf, err := s.workflows.Get(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	s.remember(wf)
	return wf, nil
}

// ListWorkflows returns all workflows.
func (s *Service) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.list")
	defer span.End()

	if s.cache != nil {
		s.cache.DeleteExpired()
	}

	wfs, err := s.workflows.List(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("workflow.count", len(wfs)))
	return wfs, nil
}

// CreateWorkflow validates and stores a new workflow at version 0.
// An empty label falls back to the label declared in the definition.
func (s *Service) CreateWorkflow(ctx context.Context, label string, format domain.Format, text string) (*domain.Workflow, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.create", trace.WithAttributes(attribute.String("workflow.format", string(format))))
	defer span.End()

	doc, err := definition.Parse(format, text)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	if label == "" {
		label = doc.Label
	}
	if label == "" {
		label = "Untitled workflow"
	}

	now := s.now()
	wf := &domain.Workflow{
		ID:          uuid.NewString(),
		Label:       label,
		Description: doc.Description,
		Format:      format,
		Definition:  text,
		Version:     0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.workflows.Create(ctx, wf); err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	log.Info(log.CatWorkflow, "Workflow created", "id", wf.ID, "label", wf.Label, "format", wf.Format)
	s.remember(wf)
	return wf, nil
}

// UpdateWorkflow saves a new definition. The update is rejected with
// *domain.VersionConflictError when upd.Version is stale and with
// *domain.InvalidDefinitionError when the text does not parse.
func (s *Service) UpdateWorkflow(ctx context.Context, id string, upd domain.WorkflowUpdate) (*domain.Workflow, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.update", trace.WithAttributes(
		attribute.String("workflow.id", id),
		attribute.Int("workflow.version", upd.Version),
	))
	defer span.End()

	current, err := s.workflows.Get(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	doc, err := definition.Parse(current.Format, upd.Definition)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	updated := *current
	updated.Definition = upd.Definition
	updated.Version = upd.Version + 1
	updated.UpdatedAt = s.now()
	if doc.Label != "" {
		updated.Label = doc.Label
	}
	if doc.Description != "" {
		updated.Description = doc.Description
	}

	if err := s.workflows.Update(ctx, &updated, upd.Version); err != nil {
		s.forget(id)
		recordError(span, err)
		log.Warn(log.CatWorkflow, "Workflow update rejected", "id", id, "version", upd.Version, "error", err)
		return nil, err
	}

	log.Info(log.CatWorkflow, "Workflow updated", "id", id, "version", updated.Version)
	s.remember(&updated)
	return &updated, nil
}

// DeleteWorkflow removes a workflow.
func (s *Service) DeleteWorkflow(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "workflow.delete", trace.WithAttributes(attribute.String("workflow.id", id)))
	defer span.End()

	s.forget(id)
	if err := s.workflows.Delete(ctx, id); err != nil {
		recordError(span, err)
		return err
	}
	log.Info(log.CatWorkflow, "Workflow deleted", "id", id)
	return nil
}

// GetTestConfiguration returns the test configuration of a workflow.
func (s *Service) GetTestConfiguration(ctx context.Context, workflowID string) (*domain.TestConfiguration, error) {
	if _, err := s.GetWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}
	return s.testConfigs.Get(ctx, workflowID)
}

// SaveTestConfiguration stores the test configuration of an existing workflow.
func (s *Service) SaveTestConfiguration(ctx context.Context, cfg *domain.TestConfiguration) error {
	ctx, span := s.tracer.Start(ctx, "workflow.test_configuration.save", trace.WithAttributes(attribute.String("workflow.id", cfg.WorkflowID)))
	defer span.End()

	if _, err := s.GetWorkflow(ctx, cfg.WorkflowID); err != nil {
		recordError(span, err)
		return err
	}

	cfg.UpdatedAt = s.now()
	if err := s.testConfigs.Save(ctx, cfg); err != nil {
		recordError(span, err)
		return fmt.Errorf("failed to save test configuration: %w", err)
	}
	return nil
}

// RunDisabled reports whether a test run of wf cannot be started: the
// definition does not parse or a required input has no configured value.
func (s *Service) RunDisabled(ctx context.Context, wf *domain.Workflow) bool {
	doc, err := definition.Parse(wf.Format, wf.Definition)
	if err != nil {
		return true
	}
	cfg, err := s.testConfigs.Get(ctx, wf.ID)
	if err != nil {
		log.ErrorErr(log.CatWorkflow, "Failed to load test configuration", err, "id", wf.ID)
		return true
	}
	return len(cfg.MissingInputs(doc.Inputs)) > 0
}

// TestWorkflow runs the stored definition once with the stored test configuration.
func (s *Service) TestWorkflow(ctx context.Context, id string) (*domain.TestExecution, error) {
	ctx, span := s.tracer.Start(ctx, "workflow.test", trace.WithAttributes(attribute.String("workflow.id", id)))
	defer span.End()

	wf, err := s.workflows.Get(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	doc, err := definition.Parse(wf.Format, wf.Definition)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	cfg, err := s.testConfigs.Get(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to load test configuration: %w", err)
	}

	if missing := cfg.MissingInputs(doc.Inputs); len(missing) > 0 {
		err := fmt.Errorf("%w: %s", domain.ErrRunDisabled, strings.Join(missing, ", "))
		recordError(span, err)
		return nil, err
	}

	log.Debug(log.CatExec, "Starting test execution", "id", id, "version", wf.Version)
	exec, err := s.executor.Execute(ctx, wf, cfg)
	if err != nil {
		recordError(span, err)
		log.Warn(log.CatExec, "Test execution failed", "id", id, "error", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("execution.id", exec.ID),
		attribute.String("execution.status", string(exec.Status)),
	)
	log.Info(log.CatExec, "Test execution finished", "id", id, "execution", exec.ID, "status", exec.Status, "duration", exec.Duration())
	return exec, nil
}

func (s *Service) remember(wf *domain.Workflow) {
	if s.cache == nil {
		return
	}
	cp := *wf
	s.cache.SetDefault(wf.ID, &cp)
}

func (s *Service) forget(id string) {
	if s.cache != nil {
		s.cache.Delete(id)
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
