package codeeditor

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/ui/testconfig"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// Backend is everything the standalone editor needs from the workflow
// service, local or remote.
type Backend interface {
	Persister
	Tester
	testconfig.Saver
	RunDisabled(ctx context.Context, wf *domain.Workflow) bool
}

type runDisabledMsg struct {
	disabled bool
}

// Program hosts the sheet as a full-screen application. It quits when the
// sheet closes and re-checks whether the workflow can run after the test
// configuration changes.
type Program struct {
	editor  Model
	backend Backend
}

// NewProgram creates the root model. cfg.Persister, cfg.Tester and
// cfg.ConfigSaver default to backend.
func NewProgram(cfg Config, backend Backend) Program {
	if cfg.Persister == nil {
		cfg.Persister = backend
	}
	if cfg.Tester == nil {
		cfg.Tester = backend
	}
	if cfg.ConfigSaver == nil && !cfg.TestConfigurationDisabled {
		cfg.ConfigSaver = backend
	}
	return Program{editor: New(cfg), backend: backend}
}

// Editor returns the hosted sheet.
func (p Program) Editor() Model {
	return p.editor
}

// Init implements tea.Model.
func (p Program) Init() tea.Cmd {
	return p.editor.Init()
}

// Update implements tea.Model.
func (p Program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClosedMsg:
		log.Debug(log.CatUI, "Editor closed", "id", p.editor.workflow.ID)
		return p, tea.Quit

	case runDisabledMsg:
		p.editor = p.editor.SetRunDisabled(msg.disabled)
		return p, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			var cmd tea.Cmd
			p.editor, cmd = p.editor.Close()
			return p, cmd
		}

	case testconfig.SavedMsg:
		var cmd tea.Cmd
		p.editor, cmd = p.editor.Update(msg)
		return p, tea.Batch(cmd, p.checkRunDisabled())
	}

	var cmd tea.Cmd
	p.editor, cmd = p.editor.Update(msg)
	return p, cmd
}

func (p Program) checkRunDisabled() tea.Cmd {
	if p.backend == nil {
		return nil
	}
	backend := p.backend
	wf := p.editor.workflow
	wf.Definition = p.editor.baseline
	return func() tea.Msg {
		return runDisabledMsg{disabled: backend.RunDisabled(context.Background(), &wf)}
	}
}

// View implements tea.Model.
func (p Program) View() string {
	return p.editor.View()
}
