package codeeditor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the sheet's key bindings. Bindings are enabled and
// disabled as the sheet's state changes, so the help line only lists
// actions that are currently available.
type KeyMap struct {
	Save           key.Binding
	Run            key.Binding
	Stop           key.Binding
	TestConfig     key.Binding
	ExternalEditor key.Binding
	Close          key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Run: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "run"),
		),
		Stop: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "stop"),
		),
		TestConfig: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "test config"),
		),
		ExternalEditor: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "$EDITOR"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Run, k.Stop, k.TestConfig, k.ExternalEditor, k.Close}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Save, k.Run, k.Stop},
		{k.TestConfig, k.ExternalEditor, k.Close},
	}
}

// owns reports whether msg is one of the sheet's keys, enabled or not.
// Disabled actions stop here instead of reaching the text area.
func (k KeyMap) owns(msg tea.KeyMsg) bool {
	s := msg.String()
	for _, b := range k.ShortHelp() {
		for _, bk := range b.Keys() {
			if bk == s {
				return true
			}
		}
	}
	return false
}
