package codeeditor

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vihar-s1/bytechef/internal/log"
	"github.com/vihar-s1/bytechef/internal/ui/styles"
	"github.com/vihar-s1/bytechef/internal/workflow/domain"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	minPaneHeight = 3
)

type button struct {
	id      string
	label   string
	enabled bool
}

func (m Model) buttons() []button {
	bs := []button{
		{id: "save", label: "Save", enabled: m.keys.Save.Enabled()},
		{id: "run", label: "Run", enabled: m.keys.Run.Enabled()},
		{id: "stop", label: "Stop", enabled: m.keys.Stop.Enabled()},
	}
	if !m.testConfigurationDisabled {
		bs = append(bs, button{id: "testconfig", label: "Test Configuration", enabled: true})
	}
	return append(bs, button{id: "close", label: "Close", enabled: true})
}

func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	return w, h
}

// layout splits the height between the editor and output panes.
func (m Model) layout() Model {
	w, h := m.size()
	chrome := 2 // toolbar + help
	if m.runDisabled {
		chrome++
	}
	rest := max(h-chrome, 2*minPaneHeight)
	editorHeight := max(rest*3/5, minPaneHeight)
	outputHeight := max(rest-editorHeight, minPaneHeight)

	m.textarea.SetWidth(max(w-2, 1))
	m.textarea.SetHeight(max(editorHeight-2, 1))
	m.output.Width = max(w-2, 1)
	m.output.Height = max(outputHeight-2, 1)
	m.help.Width = w
	return m.renderOutput()
}

// renderOutput refreshes the output pane content.
func (m Model) renderOutput() Model {
	switch {
	case m.running && m.stopping:
		m.output.SetContent(styles.HintStyle.Render(" Stopping..."))
	case m.running:
		m.output.SetContent(" " + m.spinner.View() + " Running test...")
	case m.execution != nil:
		m.output.SetContent(renderMarkdown(executionMarkdown(m.execution), m.style, m.output.Width))
		m.output.GotoTop()
	case m.runDisabled:
		m.output.SetContent(styles.HintStyle.Render(" No test results."))
	default:
		hint := fmt.Sprintf(" Press %s to run a test.", m.keys.Run.Help().Key)
		m.output.SetContent(styles.HintStyle.Render(hint))
	}
	return m
}

func renderMarkdown(md, style string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width-2, 20)),
	)
	if err != nil {
		log.Warn(log.CatUI, "Markdown renderer unavailable", "style", style, "error", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Warn(log.CatUI, "Markdown render failed", "error", err)
		return md
	}
	return strings.Trim(out, "\n")
}

func executionMarkdown(exec *domain.TestExecution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s in %s\n\n", exec.Status, styles.FormatDuration(exec.Duration()))
	if exec.Error != "" {
		fmt.Fprintf(&b, "**Error:** %s\n\n", exec.Error)
	}

	if len(exec.Tasks) > 0 {
		b.WriteString("| Task | Type | Status |\n|---|---|---|\n")
		for _, t := range exec.Tasks {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", t.Name, t.Type, t.Status)
		}
		b.WriteString("\n")
	}

	if len(exec.Outputs) > 0 {
		out, err := json.MarshalIndent(exec.Outputs, "", "  ")
		if err == nil {
			b.WriteString("### Outputs\n\n```json\n")
			b.Write(out)
			b.WriteString("\n```\n")
		}
	}
	return b.String()
}

func (m Model) zoneMark(id, s string) string {
	if m.zones == nil {
		return s
	}
	return m.zones.Mark(m.zoneID+id, s)
}

func (m Model) toolbar(width int) string {
	parts := make([]string, 0, 5)
	for _, b := range m.buttons() {
		style := styles.ButtonStyle
		if !b.enabled {
			style = styles.ButtonDisabledStyle
		}
		parts = append(parts, m.zoneMark(b.id, style.Render(b.label)))
	}
	left := strings.Join(parts, " ")

	var status string
	switch {
	case m.running:
		status = lipgloss.NewStyle().Foreground(styles.StatusWarningColor).Render("Running")
	case m.dirty:
		status = lipgloss.NewStyle().Foreground(styles.StatusWarningColor).Render("Unsaved changes")
	default:
		status = lipgloss.NewStyle().Foreground(styles.StatusSuccessColor).Render("Saved")
	}
	status += styles.HintStyle.Render(fmt.Sprintf(" v%d", m.workflow.Version))

	gap := width - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + status
}

// View renders the sheet.
func (m Model) View() string {
	w, h := m.size()

	if m.showTestConfiguration {
		return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.dialog.View())
	}

	rows := []string{m.toolbar(w)}
	if m.runDisabled {
		rows = append(rows, lipgloss.NewStyle().
			Foreground(styles.StatusWarningColor).
			Render(styles.TruncateString(RunDisabledTooltip, w)))
	}

	title := m.workflow.Label
	if title == "" {
		title = m.workflow.ID
	}
	title = fmt.Sprintf("%s (%s)", title, m.workflow.Format.Language())
	summary := styles.FormatChangeSummary(changeSummary(m.baseline, m.definition))
	rows = append(rows,
		styles.RenderWithTitleBorder(m.textarea.View(), title, summary, w, m.textarea.Height()+2, !m.running),
		styles.RenderWithTitleBorder(m.output.View(), "Test Output", m.outputTitle(), w, m.output.Height+2, m.running),
		m.help.View(m.keys),
	)

	view := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if m.zones != nil {
		return m.zones.Scan(view)
	}
	return view
}

func (m Model) outputTitle() string {
	if m.execution == nil {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(styles.StatusSuccessColor)
	if m.execution.Status != domain.StatusCompleted {
		style = lipgloss.NewStyle().Foreground(styles.StatusErrorColor)
	}
	return style.Render(string(m.execution.Status))
}

// handleMouse maps toolbar clicks to actions and scrolls the output pane.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.showTestConfiguration {
		return m, nil
	}
	if m.zones != nil && msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		for _, b := range m.buttons() {
			if !b.enabled || !m.zones.Get(m.zoneID+b.id).InBounds(msg) {
				continue
			}
			return m.press(b.id)
		}
	}
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) press(id string) (Model, tea.Cmd) {
	switch id {
	case "save":
		return m.Save()
	case "run":
		return m.Run()
	case "stop":
		return m.Stop(), nil
	case "testconfig":
		return m.OpenTestConfiguration()
	case "close":
		return m.Close()
	}
	return m, nil
}
