package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// Client talks to a bytechef API server. It implements the editor's
// persistence, test and test configuration ports.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetWorkflow fetches a workflow.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*domain.Workflow, error) {
	var resp WorkflowResponse
	if err := c.do(ctx, http.MethodGet, "/api/workflows/"+url.PathEscape(id), nil, &resp, id); err != nil {
		return nil, err
	}
	return resp.Workflow, nil
}

// RunDisabled asks the server whether wf can be test-run. Any failure
// reports the run as disabled.
func (c *Client) RunDisabled(ctx context.Context, wf *domain.Workflow) bool {
	var resp WorkflowResponse
	if err := c.do(ctx, http.MethodGet, "/api/workflows/"+url.PathEscape(wf.ID), nil, &resp, wf.ID); err != nil {
		log.Warn(log.CatAPI, "Failed to fetch run state", "id", wf.ID, "error", err)
		return true
	}
	return resp.RunDisabled
}

// ListWorkflows fetches every workflow.
func (c *Client) ListWorkflows(ctx context.Context) ([]*domain.Workflow, error) {
	var resp WorkflowListResponse
	if err := c.do(ctx, http.MethodGet, "/api/workflows", nil, &resp, ""); err != nil {
		return nil, err
	}
	return resp.Workflows, nil
}

// CreateWorkflow stores a new workflow on the server.
func (c *Client) CreateWorkflow(ctx context.Context, label string, format domain.Format, definition string) (*domain.Workflow, error) {
	var wf domain.Workflow
	req := CreateWorkflowRequest{Label: label, Format: string(format), Definition: definition}
	if err := c.do(ctx, http.MethodPost, "/api/workflows", req, &wf, ""); err != nil {
		return nil, err
	}
	return &wf, nil
}

// UpdateWorkflow sends the persistence mutation.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, upd domain.WorkflowUpdate) (*domain.Workflow, error) {
	var wf domain.Workflow
	req := UpdateWorkflowRequest{Definition: upd.Definition, Version: upd.Version}
	err := c.do(ctx, http.MethodPut, "/api/workflows/"+url.PathEscape(id), req, &wf, id)
	var conflict *domain.VersionConflictError
	if errors.As(err, &conflict) {
		conflict.Expected = upd.Version
	}
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// DeleteWorkflow removes a workflow.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/workflows/"+url.PathEscape(id), nil, nil, id)
}

// TestWorkflow sends the test execution request. Cancelling ctx aborts
// the request and the run on the server.
func (c *Client) TestWorkflow(ctx context.Context, id string) (*domain.TestExecution, error) {
	var exec domain.TestExecution
	if err := c.do(ctx, http.MethodPost, "/api/workflow-tests/"+url.PathEscape(id), nil, &exec, id); err != nil {
		return nil, err
	}
	return &exec, nil
}

// GetTestConfiguration fetches the test configuration of a workflow.
func (c *Client) GetTestConfiguration(ctx context.Context, workflowID string) (*domain.TestConfiguration, error) {
	var cfg domain.TestConfiguration
	if err := c.do(ctx, http.MethodGet, "/api/workflows/"+url.PathEscape(workflowID)+"/test-configuration", nil, &cfg, workflowID); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveTestConfiguration replaces the test configuration of a workflow.
func (c *Client) SaveTestConfiguration(ctx context.Context, cfg *domain.TestConfiguration) error {
	req := TestConfigurationRequest{Inputs: cfg.Inputs, Connections: cfg.Connections}
	var saved domain.TestConfiguration
	if err := c.do(ctx, http.MethodPut, "/api/workflows/"+url.PathEscape(cfg.WorkflowID)+"/test-configuration", req, &saved, cfg.WorkflowID); err != nil {
		return err
	}
	cfg.UpdatedAt = saved.UpdatedAt
	return nil
}

// do sends one request. body and out may be nil; id is used to build
// typed not-found and conflict errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any, id string) error {
	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp, id)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError turns an error response back into the domain error the
// server mapped it from.
func decodeError(resp *http.Response, id string) error {
	var apiErr APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	switch apiErr.Code {
	case CodeNotFound:
		return &domain.WorkflowNotFoundError{ID: id}
	case CodeVersionConflict:
		return &domain.VersionConflictError{ID: id, Actual: apiErr.CurrentVersion}
	case CodeInvalidDefinition:
		return &domain.InvalidDefinitionError{Format: domain.Format(apiErr.Format), Err: errors.New(apiErr.Details)}
	case CodeRunDisabled:
		return fmt.Errorf("%w: %s", domain.ErrRunDisabled, strings.TrimPrefix(apiErr.Details, domain.ErrRunDisabled.Error()+": "))
	}
	if apiErr.Details != "" {
		return fmt.Errorf("server returned %s: %s: %s", resp.Status, apiErr.Error, apiErr.Details)
	}
	return fmt.Errorf("server returned %s: %s", resp.Status, apiErr.Error)
}
