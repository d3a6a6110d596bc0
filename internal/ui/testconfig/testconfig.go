// Package testconfig provides the dialog that edits a workflow's test inputs.
package testconfig

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/ui/styles"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

// Saver persists a test configuration.
type Saver interface {
	SaveTestConfiguration(ctx context.Context, cfg *domain.TestConfiguration) error
}

// SavedMsg is sent when the configuration was stored.
type SavedMsg struct {
	Config *domain.TestConfiguration
}

// CancelMsg is sent when the dialog is dismissed without saving.
type CancelMsg struct{}

type saveFailedMsg struct {
	err error
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Save   key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up")),
	Save:   key.NewBinding(key.WithKeys("ctrl+s", "enter")),
	Cancel: key.NewBinding(key.WithKeys("esc")),
}

const dialogWidth = 56

// Model holds the dialog state.
type Model struct {
	workflowID  string
	inputs      []domain.Input
	fields      []textinput.Model
	connections map[string]string
	focus       int
	saver       Saver
	saving      bool
	err         error
}

// New creates a dialog for the declared inputs, prefilled from cfg (may be nil).
func New(workflowID string, inputs []domain.Input, cfg *domain.TestConfiguration, saver Saver) Model {
	m := Model{
		workflowID: workflowID,
		inputs:     inputs,
		fields:     make([]textinput.Model, len(inputs)),
		saver:      saver,
	}
	if cfg != nil {
		m.connections = cfg.Connections
	}
	for i, in := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = dialogWidth - 6
		ti.CharLimit = 0
		if in.Type != "" {
			ti.Placeholder = in.Type
		}
		if cfg != nil {
			ti.SetValue(cfg.Inputs[in.Name])
		}
		m.fields[i] = ti
	}
	if len(m.fields) > 0 {
		m.fields[0].Focus()
	}
	return m
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case saveFailedMsg:
		m.saving = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Cancel):
			return m, func() tea.Msg { return CancelMsg{} }
		case key.Matches(msg, keys.Next):
			return m.moveFocus(1), nil
		case key.Matches(msg, keys.Prev):
			return m.moveFocus(-1), nil
		case key.Matches(msg, keys.Save):
			// enter advances until the last field
			if msg.String() == "enter" && m.focus < len(m.fields)-1 {
				return m.moveFocus(1), nil
			}
			return m.save()
		}
	}

	if len(m.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m Model) moveFocus(delta int) Model {
	if len(m.fields) == 0 {
		return m
	}
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	m.fields[m.focus].Focus()
	return m
}

// Config returns the configuration the dialog would save. Empty values are omitted.
func (m Model) Config() *domain.TestConfiguration {
	cfg := &domain.TestConfiguration{
		WorkflowID:  m.workflowID,
		Inputs:      make(map[string]string, len(m.fields)),
		Connections: m.connections,
	}
	for i, in := range m.inputs {
		if v := m.fields[i].Value(); v != "" {
			cfg.Inputs[in.Name] = v
		}
	}
	return cfg
}

func (m Model) save() (Model, tea.Cmd) {
	if m.saving || m.saver == nil {
		return m, nil
	}
	m.saving = true
	m.err = nil
	cfg := m.Config()
	saver := m.saver
	return m, func() tea.Msg {
		if err := saver.SaveTestConfiguration(context.Background(), cfg); err != nil {
			log.ErrorErr(log.CatUI, "Failed to save test configuration", err, "workflow", cfg.WorkflowID)
			return saveFailedMsg{err: err}
		}
		return SavedMsg{Config: cfg}
	}
}

// Saving reports whether a save is in flight.
func (m Model) Saving() bool {
	return m.saving
}

// Err returns the last save error.
func (m Model) Err() error {
	return m.err
}

// View renders the dialog box.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1)
	labelStyle := lipgloss.NewStyle().Foreground(styles.TextDescriptionColor)
	requiredStyle := lipgloss.NewStyle().Foreground(styles.StatusErrorColor)
	dividerStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Test Configuration"))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", dialogWidth)))
	b.WriteString("\n")

	if len(m.inputs) == 0 {
		b.WriteString(styles.HintStyle.Render(" This workflow declares no inputs."))
		b.WriteString("\n")
	}
	for i, in := range m.inputs {
		indicator := " "
		if i == m.focus {
			indicator = styles.SelectionIndicatorStyle.Render(">")
		}
		label := labelStyle.Render(in.DisplayLabel())
		if in.Required {
			label += requiredStyle.Render(" *")
		}
		b.WriteString(indicator + label + "\n")
		b.WriteString("   " + m.fields[i].View() + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.saving:
		b.WriteString(styles.HintStyle.Render(" Saving..."))
	case m.err != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(styles.StatusErrorColor).Render(" " + styles.TruncateString(m.err.Error(), dialogWidth-2)))
	default:
		b.WriteString(styles.HintStyle.Render(" tab next · ctrl+s save · esc cancel"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(dialogWidth).
		Render(b.String())
}
