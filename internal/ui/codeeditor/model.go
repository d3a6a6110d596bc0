// Package codeeditor provides the workflow code editor sheet: a text editor
// over a workflow's raw definition with save, test-run and test
// configuration actions.
//
// The sheet tracks two independent state pairs, Clean/Dirty (the text
// differs from the last saved text) and Idle/Running (a test run is
// outstanding). Save is available only while Dirty. Run is available only
// while Clean, Idle and not disabled by the parent. Requests run as tea.Cmds
// and their results come back as messages, so every transition happens
// inside Update.
package codeeditor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/ui/shared/editor"
	"github.com/vihar-s1/bytechef/internal/ui/testconfig"
	"github.com/vihar-s1/bytechef/internal/workflow/definition"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// Persister stores a new definition of a workflow.
type Persister interface {
	UpdateWorkflow(ctx context.Context, id string, upd domain.WorkflowUpdate) (*domain.Workflow, error)
}

// Tester runs a workflow once with its test configuration.
type Tester interface {
	TestWorkflow(ctx context.Context, id string) (*domain.TestExecution, error)
}

// ClosedMsg is sent to the parent when the sheet closes.
type ClosedMsg struct{}

// SaveFinishedMsg reports the outcome of a save request.
type SaveFinishedMsg struct {
	// Definition is the text that was sent.
	Definition string
	Workflow   *domain.Workflow
	Err        error
}

// TestFinishedMsg reports the outcome of a test run request.
type TestFinishedMsg struct {
	Execution *domain.TestExecution
	Err       error
	seq       int
}

// RunDisabledTooltip explains why the run action is unavailable.
const RunDisabledTooltip = "The workflow cannot be executed. Please set all required workflow input parameters, connections and component properties."

// DefaultOutputStyle is the glamour style used for test results.
const DefaultOutputStyle = "dark"

// Config configures a Model.
type Config struct {
	Workflow *domain.Workflow
	// RunDisabled is set by the parent when required inputs are missing.
	RunDisabled bool
	// TestConfigurationDisabled hides the test configuration action.
	TestConfigurationDisabled bool
	TestConfiguration         *domain.TestConfiguration

	Persister   Persister
	Tester      Tester
	ConfigSaver testconfig.Saver

	// Zones enables mouse clicks on the toolbar. Optional.
	Zones *zone.Manager
	// OutputStyle is the glamour style for test results. Defaults to DefaultOutputStyle.
	OutputStyle string
}

// Model is the editor sheet.
type Model struct {
	workflow   domain.Workflow
	definition string
	baseline   string
	dirty      bool

	running   bool
	execution *domain.TestExecution
	cancelRun context.CancelFunc
	runSeq    int
	stopping  bool

	// saving is set while a save request is outstanding. A save asked for
	// meanwhile is queued, and a close waits for it.
	saving     bool
	saveQueued bool
	closing    bool

	runDisabled               bool
	testConfigurationDisabled bool
	testConfiguration         *domain.TestConfiguration

	showTestConfiguration bool
	dialog                testconfig.Model

	persister   Persister
	tester      Tester
	configSaver testconfig.Saver

	// pending tracks saves started on close.
	pending *sync.WaitGroup

	keys     KeyMap
	help     help.Model
	textarea textarea.Model
	output   viewport.Model
	spinner  spinner.Model
	zones    *zone.Manager
	zoneID   string
	style    string

	width  int
	height int
}

// New creates an editor sheet for cfg.Workflow.
func New(cfg Config) Model {
	ta := textarea.New()
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Prompt = ""
	ta.SetValue(cfg.Workflow.Definition)
	ta.Focus()

	style := cfg.OutputStyle
	if style == "" {
		style = DefaultOutputStyle
	}

	m := Model{
		workflow:                  *cfg.Workflow,
		definition:                cfg.Workflow.Definition,
		baseline:                  cfg.Workflow.Definition,
		runDisabled:               cfg.RunDisabled,
		testConfigurationDisabled: cfg.TestConfigurationDisabled || cfg.ConfigSaver == nil,
		testConfiguration:         cfg.TestConfiguration,
		persister:                 cfg.Persister,
		tester:                    cfg.Tester,
		configSaver:               cfg.ConfigSaver,
		pending:                   &sync.WaitGroup{},
		keys:                      DefaultKeyMap(),
		help:                      help.New(),
		textarea:                  ta,
		output:                    viewport.New(0, 0),
		spinner:                   spinner.New(spinner.WithSpinner(spinner.Dot)),
		zones:                     cfg.Zones,
		style:                     style,
	}
	if m.zones != nil {
		m.zoneID = m.zones.NewPrefix()
	}
	return m.syncKeys().layout()
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Dirty reports whether the text differs from the last saved text.
func (m Model) Dirty() bool { return m.dirty }

// Running reports whether a test run is outstanding.
func (m Model) Running() bool { return m.running }

// Execution returns the stored test result, or nil.
func (m Model) Execution() *domain.TestExecution { return m.execution }

// Definition returns the current text.
func (m Model) Definition() string { return m.definition }

// Baseline returns the last saved text.
func (m Model) Baseline() string { return m.baseline }

// Version returns the workflow version the next save is based on.
func (m Model) Version() int { return m.workflow.Version }

// RunDisabled reports the parent's run-disabled flag.
func (m Model) RunDisabled() bool { return m.runDisabled }

// ShowTestConfiguration reports whether the test configuration dialog is open.
func (m Model) ShowTestConfiguration() bool { return m.showTestConfiguration }

// CanSave reports whether the save action is enabled.
func (m Model) CanSave() bool { return m.dirty }

// CanRun reports whether the run action is enabled.
func (m Model) CanRun() bool {
	return !m.dirty && !m.running && !m.runDisabled
}

// SetRunDisabled updates the parent's run-disabled flag.
func (m Model) SetRunDisabled(disabled bool) Model {
	m.runDisabled = disabled
	return m.syncKeys().layout()
}

// SetSize updates the sheet dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m.layout()
}

// WaitPendingSaves blocks until saves started on close have finished or
// the timeout elapses. It reports whether all of them finished.
func (m Model) WaitPendingSaves(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		m.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// SetDefinition replaces the text as if the user had typed it.
func (m Model) SetDefinition(text string) Model {
	m.textarea.SetValue(text)
	return m.edit(text)
}

func (m Model) edit(text string) Model {
	m.definition = text
	m.dirty = text != m.baseline
	return m.syncKeys()
}

// saveRequest builds the persistence payload. ok is false when the text
// does not parse in the workflow's format.
func (m Model) saveRequest() (upd domain.WorkflowUpdate, ok bool) {
	if err := definition.Validate(m.workflow.Format, m.definition); err != nil {
		log.Debug(log.CatUI, "Ignoring save of unparsable definition", "id", m.workflow.ID, "error", err)
		return upd, false
	}
	return domain.WorkflowUpdate{Definition: m.definition, Version: m.workflow.Version}, true
}

// Save sends the current text to the Persister. It does nothing when the
// text is clean or does not parse. While another save is outstanding the
// request is queued and sent, with the new version, once that one finishes.
func (m Model) Save() (Model, tea.Cmd) {
	if !m.CanSave() || m.persister == nil {
		return m, nil
	}
	if m.saving {
		m.saveQueued = true
		return m, nil
	}
	upd, ok := m.saveRequest()
	if !ok {
		return m, nil
	}
	m.saving = true

	persister, id := m.persister, m.workflow.ID
	return m, func() tea.Msg {
		wf, err := persister.UpdateWorkflow(context.Background(), id, upd)
		return SaveFinishedMsg{Definition: upd.Definition, Workflow: wf, Err: err}
	}
}

func (m Model) handleSaveFinished(msg SaveFinishedMsg) (Model, tea.Cmd) {
	m.saving = false
	if msg.Err != nil {
		log.Warn(log.CatUI, "Workflow save failed", "id", m.workflow.ID, "error", msg.Err)
		m.dirty = true
	} else {
		if msg.Workflow != nil {
			m.workflow.Version = msg.Workflow.Version
		}
		m.baseline = msg.Definition
		m.dirty = m.definition != m.baseline
	}
	m = m.syncKeys()

	switch {
	case m.closing:
		m.closing = false
		m.saveQueued = false
		return m.Close()
	case m.saveQueued:
		m.saveQueued = false
		return m.Save()
	}
	return m, nil
}

// Run starts a test run of the stored workflow.
func (m Model) Run() (Model, tea.Cmd) {
	if !m.CanRun() || m.tester == nil || m.workflow.ID == "" {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.execution = nil
	m.running = true
	m.stopping = false
	m.cancelRun = cancel
	m.runSeq++
	m = m.syncKeys().renderOutput()

	tester, id, seq := m.tester, m.workflow.ID, m.runSeq
	run := func() tea.Msg {
		exec, err := tester.TestWorkflow(ctx, id)
		return TestFinishedMsg{Execution: exec, Err: err, seq: seq}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

// Stop cancels the outstanding run. The sheet stays Running until the
// cancelled request reports back.
func (m Model) Stop() Model {
	if !m.running || m.cancelRun == nil {
		return m
	}
	m.cancelRun()
	m.stopping = true
	return m.syncKeys().renderOutput()
}

func (m Model) handleTestFinished(msg TestFinishedMsg) Model {
	if !m.running || msg.seq != m.runSeq {
		return m
	}
	if m.cancelRun != nil {
		m.cancelRun()
		m.cancelRun = nil
	}
	m.running = false
	m.stopping = false
	if msg.Err != nil {
		log.Debug(log.CatUI, "Test run failed", "id", m.workflow.ID, "error", msg.Err)
		m.execution = nil
	} else {
		m.execution = msg.Execution
	}
	return m.syncKeys().renderOutput()
}

// Close ends the session. A dirty sheet first issues a save of the current
// text and sends ClosedMsg once the request has started, without waiting for
// its result. A save already outstanding is let finish first so the close
// save carries the current version.
func (m Model) Close() (Model, tea.Cmd) {
	if m.saving {
		m.closing = true
		return m, nil
	}
	closed := func() tea.Msg { return ClosedMsg{} }
	if !m.dirty || m.persister == nil {
		return m, closed
	}
	upd, ok := m.saveRequest()
	if !ok {
		return m, closed
	}

	persister, id, pending := m.persister, m.workflow.ID, m.pending
	return m, func() tea.Msg {
		pending.Add(1)
		started := make(chan struct{})
		go func() {
			defer pending.Done()
			close(started)
			if _, err := persister.UpdateWorkflow(context.Background(), id, upd); err != nil {
				log.ErrorErr(log.CatUI, "Save on close failed", err, "id", id)
				return
			}
			log.Info(log.CatUI, "Saved on close", "id", id)
		}()
		<-started
		return ClosedMsg{}
	}
}

// OpenTestConfiguration shows the test configuration dialog.
func (m Model) OpenTestConfiguration() (Model, tea.Cmd) {
	if m.testConfigurationDisabled {
		return m, nil
	}
	var inputs []domain.Input
	if doc, err := definition.Parse(m.workflow.Format, m.baseline); err == nil {
		inputs = doc.Inputs
	}
	m.dialog = testconfig.New(m.workflow.ID, inputs, m.testConfiguration, m.configSaver)
	m.showTestConfiguration = true
	return m.syncKeys(), textarea.Blink
}

// CloseTestConfiguration hides the test configuration dialog.
func (m Model) CloseTestConfiguration() Model {
	m.showTestConfiguration = false
	return m.syncKeys()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case SaveFinishedMsg:
		return m.handleSaveFinished(msg)

	case TestFinishedMsg:
		return m.handleTestFinished(msg), nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m.renderOutput(), cmd

	case testconfig.SavedMsg:
		m.testConfiguration = msg.Config
		return m.CloseTestConfiguration(), nil

	case testconfig.CancelMsg:
		return m.CloseTestConfiguration(), nil

	case editor.ExecMsg:
		return m, msg.ExecCmd()

	case editor.FinishedMsg:
		if msg.Err != nil {
			log.ErrorErr(log.CatUI, "External editor failed", msg.Err)
			return m, nil
		}
		if msg.Content == m.definition {
			return m, nil
		}
		return m.SetDefinition(msg.Content), nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.showTestConfiguration {
			var cmd tea.Cmd
			m.dialog, cmd = m.dialog.Update(msg)
			return m, cmd
		}
		switch {
		case key.Matches(msg, m.keys.Save):
			return m.Save()
		case key.Matches(msg, m.keys.Run):
			return m.Run()
		case key.Matches(msg, m.keys.Stop):
			return m.Stop(), nil
		case key.Matches(msg, m.keys.TestConfig):
			return m.OpenTestConfiguration()
		case key.Matches(msg, m.keys.ExternalEditor):
			return m, editor.OpenCmd(m.definition, m.workflow.Format.Extension())
		case key.Matches(msg, m.keys.Close):
			return m.Close()
		case m.keys.owns(msg):
			return m, nil
		}
	}

	if m.showTestConfiguration {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(msg)
		return m, cmd
	}

	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if after := m.textarea.Value(); after != before {
		m = m.edit(after)
	}
	return m, cmd
}

// syncKeys enables the bindings that match the current state.
func (m Model) syncKeys() Model {
	m.keys.Save.SetEnabled(m.CanSave() && m.persister != nil)
	m.keys.Run.SetEnabled(m.CanRun() && m.tester != nil)
	m.keys.Stop.SetEnabled(m.running && !m.stopping)
	m.keys.TestConfig.SetEnabled(!m.testConfigurationDisabled)
	return m
}
