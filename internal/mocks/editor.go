package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// MockPersister mocks codeeditor.Persister.
type MockPersister struct {
	mock.Mock
}

// NewMockPersister creates a mock that asserts its expectations on cleanup.
func NewMockPersister(t mock.TestingT) *MockPersister {
	m := &MockPersister{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockPersister) UpdateWorkflow(ctx context.Context, id string, upd domain.WorkflowUpdate) (*domain.Workflow, error) {
	args := m.Called(ctx, id, upd)
	wf, _ := args.Get(0).(*domain.Workflow)
	return wf, args.Error(1)
}

// MockTester mocks codeeditor.Tester.
type MockTester struct {
	mock.Mock
}

// NewMockTester creates a mock that asserts its expectations on cleanup.
func NewMockTester(t mock.TestingT) *MockTester {
	m := &MockTester{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockTester) TestWorkflow(ctx context.Context, id string) (*domain.TestExecution, error) {
	args := m.Called(ctx, id)
	exec, _ := args.Get(0).(*domain.TestExecution)
	return exec, args.Error(1)
}

// MockTestConfigurationSaver mocks testconfig.Saver.
type MockTestConfigurationSaver struct {
	mock.Mock
}

// NewMockTestConfigurationSaver creates a mock that asserts its expectations on cleanup.
func NewMockTestConfigurationSaver(t mock.TestingT) *MockTestConfigurationSaver {
	m := &MockTestConfigurationSaver{}
	m.Test(t)
	registerCleanup(t, &m.Mock)
	return m
}

func (m *MockTestConfigurationSaver) SaveTestConfiguration(ctx context.Context, cfg *domain.TestConfiguration) error {
	return m.Called(ctx, cfg).Error(0)
}
