// Package mocks provides testify mocks for the workflow ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// MockWorkflowRepository mocks application.WorkflowRepository.
type MockWorkflowRepository struct {
	mock.Mock
}

// NewMockWorkflowRepository creates a mock that asserts its expectations on cleanup.
func NewMockWorkflowRepository(t mock.TestingT) *MockWorkflowRepository {
	m := &MockWorkflowRepository{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockWorkflowRepository) Get(ctx context.Context, id string) (*domain.Workflow, error) {
	args := m.Called(ctx, id)
	wf, _ := args.Get(0).(*domain.Workflow)
	return wf, args.Error(1)
}

func (m *MockWorkflowRepository) List(ctx context.Context) ([]*domain.Workflow, error) {
	args := m.Called(ctx)
	wfs, _ := args.Get(0).([]*domain.Workflow)
	return wfs, args.Error(1)
}

func (m *MockWorkflowRepository) Create(ctx context.Context, wf *domain.Workflow) error {
	return m.Called(ctx, wf).Error(0)
}

func (m *MockWorkflowRepository) Update(ctx context.Context, wf *domain.Workflow, expectedVersion int) error {
	return m.Called(ctx, wf, expectedVersion).Error(0)
}

func (m *MockWorkflowRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockTestConfigurationRepository mocks application.TestConfigurationRepository.
type MockTestConfigurationRepository struct {
	mock.Mock
}

// NewMockTestConfigurationRepository creates a mock that asserts its expectations on cleanup.
func NewMockTestConfigurationRepository(t mock.TestingT) *MockTestConfigurationRepository {
	m := &MockTestConfigurationRepository{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockTestConfigurationRepository) Get(ctx context.Context, workflowID string) (*domain.TestConfiguration, error) {
	args := m.Called(ctx, workflowID)
	cfg, _ := args.Get(0).(*domain.TestConfiguration)
	return cfg, args.Error(1)
}

func (m *MockTestConfigurationRepository) Save(ctx context.Context, cfg *domain.TestConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}

// MockTestExecutor mocks application.TestExecutor.
type MockTestExecutor struct {
	mock.Mock
}

// NewMockTestExecutor creates a mock that asserts its expectations on cleanup.
func NewMockTestExecutor(t mock.TestingT) *MockTestExecutor {
	m := &MockTestExecutor{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockTestExecutor) Execute(ctx context.Context, wf *domain.Workflow, cfg *domain.TestConfiguration) (*domain.TestExecution, error) {
	args := m.Called(ctx, wf, cfg)
	exec, _ := args.Get(0).(*domain.TestExecution)
	return exec, args.Error(1)
}

type cleanuper interface {
	Cleanup(func())
}

func registerCleanup(t mock.TestingT, m *mock.Mock) {
	if c, ok := t.(cleanuper); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
}
