// Package historyui is a scrollback of the chords played and the quiz
// targets answered.
package historyui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rapidmidiex/chordstrainer/session"
)

// Reference:
// https://github.com/charmbracelet/bubbletea/blob/master/examples/chat/main.go

// Entries kept in the scrollback.
const maxEntries = 100

type (
	// BundleMsg records the chord and quiz state of a bundle.
	BundleMsg session.Bundle

	Model struct {
		viewport     viewport.Model
		entries      []string
		lastChord    string
		lastAnswered string
		chordStyle   lipgloss.Style
		answerStyle  lipgloss.Style
	}
)

func New(width, height int) Model {
	vp := viewport.New(width, height)
	vp.SetContent("Chords you play show up here.")

	return Model{
		viewport:    vp,
		chordStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		answerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Key messages are not forwarded to the viewport: its scroll keys belong to
// the virtual piano. Mouse wheel scrolling still works.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case BundleMsg:
		m.record(session.Bundle(msg))
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
	}

	return m, cmd
}

func (m *Model) record(b session.Bundle) {
	added := false

	chord := ""
	if len(b.Chords) > 0 {
		chord = b.Chords[0].Name
	}
	if chord != "" && chord != m.lastChord {
		m.entries = append(m.entries, m.chordStyle.Render(fmt.Sprintf("%s  %s", chord, strings.Join(b.NoteNames(), " "))))
		added = true
	}
	m.lastChord = chord

	st := b.Training
	if st.Correct && st.Target.Name != m.lastAnswered {
		m.entries = append(m.entries, m.answerStyle.Render("✓ "+st.Target.Name))
		m.lastAnswered = st.Target.Name
		added = true
	}

	if !added {
		return
	}
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
	m.viewport.SetContent(strings.Join(m.entries, "\n"))
	m.viewport.GotoBottom()
}

// Entries returns the rendered scrollback, oldest first.
func (m Model) Entries() []string {
	return append([]string(nil), m.entries...)
}

func (m Model) View() string {
	return m.viewport.View()
}
