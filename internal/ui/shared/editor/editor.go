// Package editor round-trips text through the user's external editor.
package editor

import (
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// FinishedMsg is sent when the external editor closes.
// Contains the edited content from the temp file.
type FinishedMsg struct {
	Content string
	Err     error
}

// ExecMsg is sent when the external editor command is ready to execute.
// The parent component handles this via tea.ExecProcess by calling ExecCmd().
type ExecMsg struct {
	cmd             *exec.Cmd
	tmpPath         string
	trailingNewline bool
}

// OpenCmd creates the tea.Cmd that opens the external editor with content
// in a temp file named with extension ext (".json", ".yaml"), so editors
// pick the right syntax mode. The editor is $VISUAL, then $EDITOR, then vi;
// arguments in the variable are honoured ("code --wait").
//
// Usage:
//  1. Call OpenCmd(content, ext) to get a tea.Cmd
//  2. Handle ExecMsg in Update by calling msg.ExecCmd()
//  3. Handle FinishedMsg to get the edited content
func OpenCmd(content, ext string) tea.Cmd {
	return func() tea.Msg {
		args := strings.Fields(os.Getenv("VISUAL"))
		if len(args) == 0 {
			args = strings.Fields(os.Getenv("EDITOR"))
		}
		if len(args) == 0 {
			args = []string{"vi"}
		}

		tmpFile, err := os.CreateTemp("", "bytechef-workflow-*"+ext)
		if err != nil {
			return FinishedMsg{Err: err}
		}
		tmpPath := tmpFile.Name()

		if _, err := tmpFile.WriteString(content); err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpPath)
			return FinishedMsg{Err: err}
		}
		if err := tmpFile.Close(); err != nil {
			_ = os.Remove(tmpPath)
			return FinishedMsg{Err: err}
		}

		// #nosec G204 -- editor command is from trusted env vars (VISUAL/EDITOR) or hardcoded "vi"
		cmd := exec.Command(args[0], append(args[1:], tmpPath)...)

		return ExecMsg{
			cmd:             cmd,
			tmpPath:         tmpPath,
			trailingNewline: strings.HasSuffix(content, "\n"),
		}
	}
}

// ExecCmd returns the tea.ExecProcess command that runs the editor.
// Call this from the parent Update when receiving ExecMsg.
func (msg ExecMsg) ExecCmd() tea.Cmd {
	return tea.ExecProcess(msg.cmd, func(err error) tea.Msg {
		return msg.finish(err)
	})
}

func (msg ExecMsg) finish(err error) FinishedMsg {
	defer func() { _ = os.Remove(msg.tmpPath) }()

	if err != nil {
		return FinishedMsg{Err: err}
	}
	content, err := os.ReadFile(msg.tmpPath)
	if err != nil {
		return FinishedMsg{Err: err}
	}

	// Editors like vim append a newline on save. Keep the text's original
	// ending so an untouched file round-trips unchanged.
	text := strings.TrimRight(string(content), "\n")
	if msg.trailingNewline {
		text += "\n"
	}
	return FinishedMsg{Content: text}
}
