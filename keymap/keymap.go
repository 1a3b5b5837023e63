package keymap

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Mapping holds the app wide bindings. Letters on the home and q rows belong
// to the virtual piano, so nothing here uses them.
type Mapping struct {
	NextChord   key.Binding
	ToggleTrain key.Binding
	ReleaseAll  key.Binding
	OctaveDown  key.Binding
	OctaveUp    key.Binding
	Select      key.Binding
	GoBack      key.Binding
	Quit        key.Binding
}

var DefaultMapping = Mapping{
	NextChord: key.NewBinding(
		key.WithKeys(tea.KeySpace.String(), tea.KeyRight.String()),
		key.WithHelp("space/→", "alternate chord"),
	),
	ToggleTrain: key.NewBinding(
		key.WithKeys(tea.KeyCtrlT.String()),
		key.WithHelp("ctrl+t", "train mode"),
	),
	ReleaseAll: key.NewBinding(
		key.WithKeys(tea.KeyEsc.String()),
		key.WithHelp("esc", "release keys"),
	),
	OctaveDown: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "octave down"),
	),
	OctaveUp: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "octave up"),
	),
	Select: key.NewBinding(
		key.WithKeys(tea.KeyEnter.String()),
		key.WithHelp("enter", "select"),
	),
	GoBack: key.NewBinding(
		key.WithKeys(tea.KeyBackspace.String()),
		key.WithHelp("backspace", "change input"),
	),
	Quit: key.NewBinding(
		key.WithKeys(tea.KeyCtrlC.String()),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (m Mapping) ShortHelp() []key.Binding {
	return []key.Binding{m.NextChord, m.ToggleTrain, m.GoBack, m.Quit}
}

// FullHelp implements help.KeyMap.
func (m Mapping) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.NextChord, m.ToggleTrain},
		{m.OctaveDown, m.OctaveUp, m.ReleaseAll},
		{m.Select, m.GoBack, m.Quit},
	}
}
