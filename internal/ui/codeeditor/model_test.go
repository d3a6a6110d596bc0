package codeeditor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vihar-s1/bytechef/internal/mocks"
	"github.com/vihar-s1/bytechef/internal/ui/shared/editor"
	"github.com/vihar-s1/bytechef/internal/ui/testconfig"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

func testWorkflow() *domain.Workflow {
	return &domain.Workflow{
		ID:         "wf-1",
		Label:      "Orders",
		Format:     domain.FormatJSON,
		Definition: `{"a":1}`,
		Version:    3,
	}
}

// drain runs cmd and any batched commands, returning the messages produced.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	require.Failf(t, "message not found", "want %T in %#v", zero, msgs)
	return zero
}

func keyPress(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestNew_StartsCleanAndIdle(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()})

	require.False(t, m.Dirty())
	require.False(t, m.Running())
	require.Nil(t, m.Execution())
	require.Equal(t, `{"a":1}`, m.Definition())
	require.Equal(t, `{"a":1}`, m.Baseline())
	require.Equal(t, 3, m.Version())
	require.False(t, m.CanSave())
	require.True(t, m.CanRun())
}

func TestEdit_TracksDirtyAgainstBaseline(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()})

	m = m.SetDefinition(`{"a":2}`)
	require.True(t, m.Dirty())
	require.True(t, m.CanSave())
	require.False(t, m.CanRun(), "run needs a clean sheet")

	m = m.SetDefinition(`{"a":1}`)
	require.False(t, m.Dirty(), "typing back to the saved text is clean")
}

func TestEdit_TypingMarksDirty(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})

	require.True(t, m.Dirty())
	require.Equal(t, `{"a":1} `, m.Definition())
}

func TestSave_Success(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", domain.WorkflowUpdate{Definition: `{"a":2}`, Version: 3}).
		Return(&domain.Workflow{ID: "wf-1", Definition: `{"a":2}`, Version: 4}, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)

	m, cmd := m.Update(keyPress(tea.KeyCtrlS))
	require.NotNil(t, cmd)
	m, _ = m.Update(findMsg[SaveFinishedMsg](t, drain(cmd)))

	require.False(t, m.Dirty())
	require.Equal(t, `{"a":2}`, m.Baseline())
	require.Equal(t, 4, m.Version())
	require.True(t, m.CanRun())
}

func TestSave_FailureStaysDirty(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", mock.Anything).
		Return(nil, &domain.VersionConflictError{ID: "wf-1", Expected: 3, Actual: 5}).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)

	m, cmd := m.Save()
	m, _ = m.Update(findMsg[SaveFinishedMsg](t, drain(cmd)))

	require.True(t, m.Dirty())
	require.True(t, m.CanSave())
	require.Equal(t, `{"a":1}`, m.Baseline())
	require.Equal(t, 3, m.Version())
}

func TestSave_UnparsableTextIsIgnored(t *testing.T) {
	// No expectations: any call fails the test.
	persister := mocks.NewMockPersister(t)

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{a:`)

	m, cmd := m.Save()
	require.Nil(t, cmd)
	require.True(t, m.Dirty())
	require.Equal(t, `{a:`, m.Definition())
}

func TestSave_YAMLUsesYAMLParser(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", mock.Anything).
		Return(&domain.Workflow{ID: "wf-1", Version: 4}, nil).Once()

	wf := testWorkflow()
	wf.Format = domain.FormatYAML
	wf.Definition = "label: a\n"
	m := New(Config{Workflow: wf, Persister: persister})

	m = m.SetDefinition("label: [unclosed\n")
	_, cmd := m.Save()
	require.Nil(t, cmd)

	m = m.SetDefinition("label: b\n")
	_, cmd = m.Save()
	require.NotNil(t, cmd)
	drain(cmd)
}

func TestSave_CleanSheetDoesNothing(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	m := New(Config{Workflow: testWorkflow(), Persister: persister})

	_, cmd := m.Update(keyPress(tea.KeyCtrlS))
	require.Nil(t, cmd)
}

func TestSave_EditWhileSavingStaysDirty(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", mock.Anything).
		Return(&domain.Workflow{ID: "wf-1", Version: 4}, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)
	m, cmd := m.Save()
	m = m.SetDefinition(`{"a":3}`)

	m, _ = m.Update(findMsg[SaveFinishedMsg](t, drain(cmd)))

	require.True(t, m.Dirty())
	require.Equal(t, `{"a":2}`, m.Baseline())
}

func TestSave_RepeatedWhileSavingIsQueued(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", domain.WorkflowUpdate{Definition: `{"a":2}`, Version: 3}).
		Return(&domain.Workflow{ID: "wf-1", Version: 4}, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)

	m, first := m.Save()
	require.NotNil(t, first)
	m, second := m.Update(keyPress(tea.KeyCtrlS))
	require.Nil(t, second, "no second request while one is outstanding")

	m, cmd := m.Update(findMsg[SaveFinishedMsg](t, drain(first)))
	require.Nil(t, cmd, "queued save of unchanged text is dropped")
	require.False(t, m.Dirty())
	require.True(t, m.CanRun())
	require.Equal(t, 4, m.Version())
}

func TestSave_QueuedSaveUsesNewVersion(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", domain.WorkflowUpdate{Definition: `{"a":2}`, Version: 3}).
		Return(&domain.Workflow{ID: "wf-1", Version: 4}, nil).Once()
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", domain.WorkflowUpdate{Definition: `{"a":3}`, Version: 4}).
		Return(&domain.Workflow{ID: "wf-1", Version: 5}, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)
	m, first := m.Save()
	m = m.SetDefinition(`{"a":3}`)
	m, second := m.Save()
	require.Nil(t, second)

	m, cmd := m.Update(findMsg[SaveFinishedMsg](t, drain(first)))
	require.NotNil(t, cmd)
	require.True(t, m.Dirty())

	m, _ = m.Update(findMsg[SaveFinishedMsg](t, drain(cmd)))
	require.False(t, m.Dirty())
	require.Equal(t, 5, m.Version())
	require.Equal(t, `{"a":3}`, m.Baseline())
}

func TestRun_StoresResult(t *testing.T) {
	exec := &domain.TestExecution{ID: "exec-1", WorkflowID: "wf-1", Status: domain.StatusCompleted}
	tester := mocks.NewMockTester(t)
	tester.On("TestWorkflow", mock.Anything, "wf-1").Return(exec, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Tester: tester})
	m.execution = &domain.TestExecution{ID: "previous"}

	m, cmd := m.Update(keyPress(tea.KeyCtrlR))
	require.NotNil(t, cmd)
	require.True(t, m.Running())
	require.Nil(t, m.Execution(), "previous result is cleared")
	require.False(t, m.CanRun())

	m, _ = m.Update(findMsg[TestFinishedMsg](t, drain(cmd)))

	require.False(t, m.Running())
	require.Equal(t, exec, m.Execution())
	require.True(t, m.CanRun())
}

func TestRun_FailureClearsResult(t *testing.T) {
	tester := mocks.NewMockTester(t)
	tester.On("TestWorkflow", mock.Anything, "wf-1").Return(nil, errors.New("executor down")).Once()

	m := New(Config{Workflow: testWorkflow(), Tester: tester})
	m, cmd := m.Run()
	m, _ = m.Update(findMsg[TestFinishedMsg](t, drain(cmd)))

	require.False(t, m.Running())
	require.Nil(t, m.Execution())
}

func TestRun_Refused(t *testing.T) {
	tests := []struct {
		name  string
		setup func(Model) Model
	}{
		{"dirty", func(m Model) Model { return m.SetDefinition(`{"a":2}`) }},
		{"run disabled", func(m Model) Model { return m.SetRunDisabled(true) }},
		{"running", func(m Model) Model {
			m.running = true
			return m.syncKeys()
		}},
		{"no workflow id", func(m Model) Model {
			m.workflow.ID = ""
			return m
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tester := mocks.NewMockTester(t)
			m := tt.setup(New(Config{Workflow: testWorkflow(), Tester: tester}))

			_, cmd := m.Run()
			require.Nil(t, cmd)
		})
	}
}

func TestStop_CancelsRun(t *testing.T) {
	tester := mocks.NewMockTester(t)
	tester.On("TestWorkflow", mock.Anything, "wf-1").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.Canceled).Once()

	m := New(Config{Workflow: testWorkflow(), Tester: tester})
	m, cmd := m.Run()

	done := make(chan []tea.Msg, 1)
	go func() { done <- drain(cmd) }()

	m, _ = m.Update(keyPress(tea.KeyCtrlX))
	require.True(t, m.Running(), "running until the request reports back")

	var msgs []tea.Msg
	select {
	case msgs = <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "run was not cancelled")
	}

	m, _ = m.Update(findMsg[TestFinishedMsg](t, msgs))
	require.False(t, m.Running())
	require.Nil(t, m.Execution())
}

func TestStop_IdleDoesNothing(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()})
	m = m.Stop()
	require.False(t, m.Running())
}

func TestTestFinished_StaleResultIgnored(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()})
	m.running = true
	m.runSeq = 2

	m, _ = m.Update(TestFinishedMsg{Execution: &domain.TestExecution{ID: "old"}, seq: 1})

	require.True(t, m.Running())
	require.Nil(t, m.Execution())
}

func TestClose_Clean(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	m := New(Config{Workflow: testWorkflow(), Persister: persister})

	_, cmd := m.Update(keyPress(tea.KeyEscape))

	findMsg[ClosedMsg](t, drain(cmd))
}

func TestClose_DirtySavesFirst(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", domain.WorkflowUpdate{Definition: `{"a":2}`, Version: 3}).
		Return(&domain.Workflow{ID: "wf-1", Version: 4}, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)

	m, cmd := m.Close()
	findMsg[ClosedMsg](t, drain(cmd))

	require.True(t, m.WaitPendingSaves(2*time.Second))
}

func TestClose_DirtyFailedSaveStillCloses(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", mock.Anything).
		Return(nil, errors.New("disk full")).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)

	m, cmd := m.Close()
	findMsg[ClosedMsg](t, drain(cmd))
	require.True(t, m.WaitPendingSaves(2*time.Second))
}

func TestClose_DirtyUnparsableStillCloses(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{a:`)

	m, cmd := m.Close()
	findMsg[ClosedMsg](t, drain(cmd))
	require.True(t, m.WaitPendingSaves(time.Second))
}

// blockingPersister holds every update until release is closed.
type blockingPersister struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (p *blockingPersister) UpdateWorkflow(_ context.Context, id string, upd domain.WorkflowUpdate) (*domain.Workflow, error) {
	p.once.Do(func() { close(p.entered) })
	<-p.release
	return &domain.Workflow{ID: id, Definition: upd.Definition, Version: upd.Version + 1}, nil
}

func TestClose_DirtyIssuesSaveWithoutWaiting(t *testing.T) {
	persister := &blockingPersister{entered: make(chan struct{}), release: make(chan struct{})}
	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)

	m, cmd := m.Close()
	require.NotNil(t, cmd)

	closed := make(chan []tea.Msg, 1)
	go func() { closed <- drain(cmd) }()
	select {
	case msgs := <-closed:
		findMsg[ClosedMsg](t, msgs)
	case <-time.After(2 * time.Second):
		t.Fatal("close waited for the save to complete")
	}

	select {
	case <-persister.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("save was never issued")
	}
	require.False(t, m.WaitPendingSaves(10*time.Millisecond), "save still in flight")

	close(persister.release)
	require.True(t, m.WaitPendingSaves(2*time.Second))
}

func TestClose_WaitsForSaveInFlight(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", domain.WorkflowUpdate{Definition: `{"a":2}`, Version: 3}).
		Return(&domain.Workflow{ID: "wf-1", Version: 4}, nil).Once()
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", domain.WorkflowUpdate{Definition: `{"a":3}`, Version: 4}).
		Return(&domain.Workflow{ID: "wf-1", Version: 5}, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)
	m, save := m.Save()
	m = m.SetDefinition(`{"a":3}`)

	m, cmd := m.Close()
	require.Nil(t, cmd, "close is held until the outstanding save reports")

	m, cmd = m.Update(findMsg[SaveFinishedMsg](t, drain(save)))
	findMsg[ClosedMsg](t, drain(cmd))
	require.True(t, m.WaitPendingSaves(2*time.Second))
}

func TestClose_AfterSaveInFlightOfCurrentText(t *testing.T) {
	persister := mocks.NewMockPersister(t)
	persister.On("UpdateWorkflow", mock.Anything, "wf-1", mock.Anything).
		Return(&domain.Workflow{ID: "wf-1", Version: 4}, nil).Once()

	m := New(Config{Workflow: testWorkflow(), Persister: persister})
	m = m.SetDefinition(`{"a":2}`)
	m, save := m.Save()
	m, cmd := m.Close()
	require.Nil(t, cmd)

	m, cmd = m.Update(findMsg[SaveFinishedMsg](t, drain(save)))
	findMsg[ClosedMsg](t, drain(cmd))
	require.True(t, m.WaitPendingSaves(time.Second))
	require.False(t, m.Dirty())
}

func TestTestConfiguration_OpenAndCancel(t *testing.T) {
	saver := mocks.NewMockTestConfigurationSaver(t)
	wf := testWorkflow()
	wf.Definition = `{"inputs":[{"name":"email","required":true}]}`
	m := New(Config{Workflow: wf, ConfigSaver: saver})

	m, _ = m.Update(keyPress(tea.KeyCtrlT))
	require.True(t, m.ShowTestConfiguration())
	require.Contains(t, ansi.Strip(m.View()), "Test Configuration")

	// esc belongs to the dialog while it is open
	m, cmd := m.Update(keyPress(tea.KeyEscape))
	m, _ = m.Update(findMsg[testconfig.CancelMsg](t, drain(cmd)))
	require.False(t, m.ShowTestConfiguration())
}

func TestTestConfiguration_SavedIsKept(t *testing.T) {
	m := New(Config{Workflow: testWorkflow(), ConfigSaver: mocks.NewMockTestConfigurationSaver(t)})
	m, _ = m.OpenTestConfiguration()

	cfg := &domain.TestConfiguration{WorkflowID: "wf-1", Inputs: map[string]string{"email": "a@b.c"}}
	m, _ = m.Update(testconfig.SavedMsg{Config: cfg})

	require.False(t, m.ShowTestConfiguration())
	require.Equal(t, cfg, m.testConfiguration)
}

func TestTestConfiguration_Disabled(t *testing.T) {
	m := New(Config{
		Workflow:                  testWorkflow(),
		ConfigSaver:               mocks.NewMockTestConfigurationSaver(t),
		TestConfigurationDisabled: true,
	})

	m, _ = m.Update(keyPress(tea.KeyCtrlT))

	require.False(t, m.ShowTestConfiguration())
	require.Equal(t, `{"a":1}`, m.Definition(), "disabled shortcut does not reach the text area")
}

func TestTestConfiguration_IndependentOfRunState(t *testing.T) {
	m := New(Config{Workflow: testWorkflow(), ConfigSaver: mocks.NewMockTestConfigurationSaver(t)})
	m = m.SetDefinition(`{"a":2}`)
	m.running = true

	m, _ = m.OpenTestConfiguration()
	require.True(t, m.ShowTestConfiguration())
	m = m.CloseTestConfiguration()

	require.True(t, m.Dirty())
	require.True(t, m.Running())
}

func TestExternalEditor_ReplacesText(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()})

	m, _ = m.Update(editor.FinishedMsg{Content: `{"a":9}`})
	require.True(t, m.Dirty())
	require.Equal(t, `{"a":9}`, m.Definition())

	m, _ = m.Update(editor.FinishedMsg{Err: errors.New("editor crashed")})
	require.Equal(t, `{"a":9}`, m.Definition())
}

func TestView_RunDisabledTooltip(t *testing.T) {
	m := New(Config{Workflow: testWorkflow(), RunDisabled: true}).SetSize(200, 30)

	view := ansi.Strip(m.View())

	require.Contains(t, view, RunDisabledTooltip)
	require.False(t, m.CanRun())
}

func TestView_TestConfigurationDialogHasSingleFrame(t *testing.T) {
	m := New(Config{Workflow: testWorkflow(), ConfigSaver: mocks.NewMockTestConfigurationSaver(t)}).SetSize(120, 40)
	m, _ = m.OpenTestConfiguration()

	view := ansi.Strip(m.View())

	require.Contains(t, view, "Test Configuration")
	require.Equal(t, 1, strings.Count(view, "╭"))
	require.Equal(t, 1, strings.Count(view, "╯"))
}

func TestView_ChangeSummaryAndStatus(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()}).SetSize(100, 30)
	require.Contains(t, ansi.Strip(m.View()), "Saved v3")

	m = m.SetDefinition("{\n\"a\":2\n}")
	view := ansi.Strip(m.View())

	require.Contains(t, view, "+3 -1")
	require.Contains(t, view, "Unsaved changes")
	require.Contains(t, view, "Orders (json)")
}

func TestView_RendersExecution(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := New(Config{Workflow: testWorkflow()}).SetSize(120, 80)
	m.execution = &domain.TestExecution{
		ID:        "exec-1",
		Status:    domain.StatusCompleted,
		StartedAt: start,
		EndedAt:   start.Add(42 * time.Millisecond),
		Tasks:     []domain.TaskExecution{{Name: "fetch", Type: "http/v1/get", Status: domain.StatusCompleted}},
		Outputs:   map[string]any{"fetch": map[string]any{"url": "https://example.com"}},
	}
	m = m.renderOutput()

	view := ansi.Strip(m.View())

	require.Contains(t, view, "COMPLETED in 42ms")
	require.Contains(t, view, "fetch")
	require.Contains(t, view, "https://example.com")
}

func TestView_HelpFollowsState(t *testing.T) {
	m := New(Config{Workflow: testWorkflow()}).SetSize(120, 30)
	view := ansi.Strip(m.View())
	require.Contains(t, view, "ctrl+r run")
	require.NotContains(t, view, "ctrl+s save")

	m = m.SetDefinition(`{"a":2}`)
	view = ansi.Strip(m.View())
	require.Contains(t, view, "ctrl+s save")
	require.NotContains(t, view, "ctrl+r run")
}

type fakeBackend struct {
	mu          sync.Mutex
	version     int
	failSave    bool
	runDisabled bool
	saved       []string
}

func (f *fakeBackend) UpdateWorkflow(_ context.Context, id string, upd domain.WorkflowUpdate) (*domain.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return nil, errors.New("save failed")
	}
	f.saved = append(f.saved, upd.Definition)
	f.version = upd.Version + 1
	return &domain.Workflow{ID: id, Definition: upd.Definition, Version: f.version}, nil
}

func (f *fakeBackend) TestWorkflow(_ context.Context, id string) (*domain.TestExecution, error) {
	return &domain.TestExecution{ID: "exec", WorkflowID: id, Status: domain.StatusCompleted}, nil
}

func (f *fakeBackend) SaveTestConfiguration(context.Context, *domain.TestConfiguration) error {
	return nil
}

func (f *fakeBackend) RunDisabled(context.Context, *domain.Workflow) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runDisabled
}

func (f *fakeBackend) savedDefinitions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saved...)
}
