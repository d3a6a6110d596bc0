// Package api serves the workflow store over HTTP and provides a client for it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// WorkflowService is the application surface served by the API.
// *application.Service implements it.
type WorkflowService interface {
	GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error)
	ListWorkflows(ctx context.Context) ([]*domain.Workflow, error)
	CreateWorkflow(ctx context.Context, label string, format domain.Format, definition string) (*domain.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, upd domain.WorkflowUpdate) (*domain.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	TestWorkflow(ctx context.Context, id string) (*domain.TestExecution, error)
	GetTestConfiguration(ctx context.Context, workflowID string) (*domain.TestConfiguration, error)
	SaveTestConfiguration(ctx context.Context, cfg *domain.TestConfiguration) error
	RunDisabled(ctx context.Context, wf *domain.Workflow) bool
}

// maxBodySize caps request bodies.
const maxBodySize = 4 << 20

// Handler provides the HTTP endpoints.
type Handler struct {
	svc     WorkflowService
	metrics *Metrics
}

// NewHandler creates a Handler. metrics may be nil.
func NewHandler(svc WorkflowService, metrics *Metrics) *Handler {
	return &Handler{svc: svc, metrics: metrics}
}

// Router returns a router with every route registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(extractTraceContext)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/workflows", h.ListWorkflows).Methods(http.MethodGet)
	api.HandleFunc("/workflows", h.CreateWorkflow).Methods(http.MethodPost)
	api.HandleFunc("/workflows/{id}", h.GetWorkflow).Methods(http.MethodGet)
	api.HandleFunc("/workflows/{id}", h.UpdateWorkflow).Methods(http.MethodPut)
	api.HandleFunc("/workflows/{id}", h.DeleteWorkflow).Methods(http.MethodDelete)
	api.HandleFunc("/workflows/{id}/test-configuration", h.GetTestConfiguration).Methods(http.MethodGet)
	api.HandleFunc("/workflows/{id}/test-configuration", h.SaveTestConfiguration).Methods(http.MethodPut)
	api.HandleFunc("/workflow-tests/{id}", h.TestWorkflow).Methods(http.MethodPost)
	return r
}

func extractTraceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Health returns a simple health check response.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// ListWorkflows returns every workflow.
// GET /api/workflows
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	wfs, err := h.svc.ListWorkflows(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if wfs == nil {
		wfs = []*domain.Workflow{}
	}
	writeJSON(w, http.StatusOK, WorkflowListResponse{Workflows: wfs})
}

// GetWorkflow returns one workflow and whether it can be test-run.
// GET /api/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := h.svc.GetWorkflow(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkflowResponse{
		Workflow:    wf,
		RunDisabled: h.svc.RunDisabled(r.Context(), wf),
	})
}

// CreateWorkflow stores a new workflow.
// POST /api/workflows
func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkflowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, APIError{Error: "Invalid format", Code: CodeInvalidRequest, Details: err.Error()})
		return
	}

	wf, err := h.svc.CreateWorkflow(r.Context(), req.Label, format, req.Definition)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wf)
}

// UpdateWorkflow applies the persistence mutation {definition, version}.
// PUT /api/workflows/{id}
func (h *Handler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req UpdateWorkflowRequest
	if !decodeBody(w, r, &req) {
		return
	}

	wf, err := h.svc.UpdateWorkflow(r.Context(), mux.Vars(r)["id"], domain.WorkflowUpdate{
		Definition: req.Definition,
		Version:    req.Version,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

// DeleteWorkflow removes a workflow.
// DELETE /api/workflows/{id}
func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteWorkflow(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TestWorkflow runs the stored workflow once. The run stops when the
// client goes away.
// POST /api/workflow-tests/{id}
func (h *Handler) TestWorkflow(w http.ResponseWriter, r *http.Request) {
	exec, err := h.svc.TestWorkflow(r.Context(), mux.Vars(r)["id"])
	if exec != nil && h.metrics != nil {
		h.metrics.recordTestExecution(exec.Status)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug(log.CatAPI, "Test execution cancelled by client", "id", mux.Vars(r)["id"])
			if h.metrics != nil {
				h.metrics.recordTestExecution(domain.StatusCancelled)
			}
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

// GetTestConfiguration returns the test configuration of a workflow.
// GET /api/workflows/{id}/test-configuration
func (h *Handler) GetTestConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.svc.GetTestConfiguration(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// SaveTestConfiguration replaces the test configuration of a workflow.
// PUT /api/workflows/{id}/test-configuration
func (h *Handler) SaveTestConfiguration(w http.ResponseWriter, r *http.Request) {
	var req TestConfigurationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg := &domain.TestConfiguration{
		WorkflowID:  mux.Vars(r)["id"],
		Inputs:      req.Inputs,
		Connections: req.Connections,
	}
	if err := h.svc.SaveTestConfiguration(r.Context(), cfg); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, APIError{Error: "Invalid JSON body", Code: CodeInvalidJSON, Details: err.Error()})
		return false
	}
	return true
}

// writeDomainError maps domain errors to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFound *domain.WorkflowNotFoundError
		conflict *domain.VersionConflictError
		invalid  *domain.InvalidDefinitionError
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, APIError{Error: "Workflow not found", Code: CodeNotFound, Details: err.Error()})
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, APIError{Error: "Workflow was modified", Code: CodeVersionConflict, Details: err.Error(), CurrentVersion: conflict.Actual})
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, APIError{Error: "Invalid workflow definition", Code: CodeInvalidDefinition, Details: invalid.Err.Error(), Format: string(invalid.Format)})
	case errors.Is(err, domain.ErrRunDisabled):
		writeError(w, http.StatusUnprocessableEntity, APIError{Error: "Workflow cannot be executed", Code: CodeRunDisabled, Details: err.Error()})
	default:
		log.ErrorErr(log.CatAPI, "Request failed", err)
		writeError(w, http.StatusInternalServerError, APIError{Error: "Internal error", Code: CodeInternal, Details: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatAPI, "Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, apiErr APIError) {
	writeJSON(w, status, apiErr)
}
