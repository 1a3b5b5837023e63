package keymap_test

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rapidmidiex/chordstrainer/keymap"
	"github.com/rapidmidiex/chordstrainer/vpiano"
	"github.com/stretchr/testify/require"
)

func TestNoClashWithPiano(t *testing.T) {
	m := keymap.DefaultMapping
	bindings := []key.Binding{m.NextChord, m.ToggleTrain, m.ReleaseAll, m.OctaveDown, m.OctaveUp, m.Select, m.GoBack, m.Quit}
	for _, n := range vpiano.MakeOctaveNotes(vpiano.C4) {
		for _, b := range bindings {
			require.NotContains(t, b.Keys(), n.KeyBinding, b.Help().Desc)
		}
	}
}

func TestNextChordKeys(t *testing.T) {
	m := keymap.DefaultMapping
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, m.NextChord))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRight}, m.NextChord))
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyLeft}, m.NextChord))
}
