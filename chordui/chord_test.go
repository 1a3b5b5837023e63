package chordui_test

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rapidmidiex/chordstrainer/chords"
	"github.com/rapidmidiex/chordstrainer/chordui"
	"github.com/rapidmidiex/chordstrainer/handoff"
	"github.com/rapidmidiex/chordstrainer/midi"
	"github.com/rapidmidiex/chordstrainer/rmxerr"
	"github.com/rapidmidiex/chordstrainer/rtt"
	"github.com/rapidmidiex/chordstrainer/session"
	"github.com/rapidmidiex/chordstrainer/theory"
	"github.com/rapidmidiex/chordstrainer/vpiano"
	"github.com/stretchr/testify/require"
)

func bundleOf(text string) session.Bundle {
	notes := theory.Parse(text)
	return session.Bundle{Notes: notes, Chords: chords.Find(notes), At: time.Now()}
}

func update(t *testing.T, m chordui.Model, msg tea.Msg) (chordui.Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(chordui.Model)
	require.True(t, ok)
	return cm, cmd
}

func frame(t *testing.T, m chordui.Model) chordui.Model {
	t.Helper()
	m, _ = update(t, m, chordui.FrameMsg(time.Now()))
	return m
}

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func TestFramePollsResults(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	m := chordui.New("test", slot, nil, nil, time.Millisecond)

	m = frame(t, m)
	require.Empty(t, m.Bundle().Notes, "nothing published yet")
	require.Contains(t, m.View(), "Play some notes")

	slot.Publish(bundleOf("A C# E"))
	m = frame(t, m)
	shown, ok := m.Shown()
	require.True(t, ok)
	require.Equal(t, "A Major", shown.Name)

	view := m.View()
	require.Contains(t, view, "A Major")
	require.Contains(t, view, "AΔ")
	require.NotContains(t, view, "space: alternate chord", "single reading")

	// An empty frame keeps what is on screen.
	m = frame(t, m)
	shown, _ = m.Shown()
	require.Equal(t, "A Major", shown.Name)
}

func TestAlternateChordCycling(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	m := chordui.New("test", slot, nil, nil, time.Millisecond)

	slot.Publish(bundleOf("C D G"))
	m = frame(t, m)
	require.Contains(t, m.View(), "space: alternate chord")

	var names []string
	for i := 0; i < 3; i++ {
		shown, _ := m.Shown()
		names = append(names, shown.Name)
		m, _ = update(t, m, space)
	}
	require.Equal(t, []string{"C Sus2", "G Sus4", "C Sus2"}, names)

	// Three presses left the second reading showing; → wraps to the first.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	shown, _ := m.Shown()
	require.Equal(t, "C Sus2", shown.Name)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	shown, _ = m.Shown()
	require.Equal(t, "G Sus4", shown.Name)

	// A new bundle starts from the first reading again.
	slot.Publish(bundleOf("G C D"))
	m = frame(t, m)
	shown, _ = m.Shown()
	require.Equal(t, "G Sus4", shown.Name)
}

func TestNoChord(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	m := chordui.New("test", slot, nil, nil, time.Millisecond)

	slot.Publish(bundleOf("C C#"))
	m = frame(t, m)
	_, ok := m.Shown()
	require.False(t, ok)
	m, _ = update(t, m, space)
	require.Contains(t, m.View(), "C#")
}

func TestToggleTrain(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	m := chordui.New("test", slot, nil, nil, time.Millisecond)

	b := bundleOf("C E G")
	b.Training.Target.Name = "F#m7"
	b.Training.Correct = true
	slot.Publish(b)
	m = frame(t, m)

	// The target name is styled separately, so escape codes may sit
	// between "Play" and the name.
	require.True(t, m.Training())
	view := m.View()
	require.Contains(t, view, "Play")
	require.Contains(t, view, "F#m7")
	require.Contains(t, view, "Correct!")
	require.Contains(t, view, "✓ F#m7", "answer kept in the history")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.False(t, m.Training())
	view = m.View()
	require.NotContains(t, view, "Play")
	require.NotContains(t, view, "Correct!")
	require.Contains(t, view, "✓ F#m7", "history stays")
}

func TestVirtualKeyboard(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	events := make(chan midi.Event, 8)
	m := chordui.New("virtual", slot, events, vpiano.NewKeyboard(vpiano.C4), time.Millisecond)

	press := func(r rune) {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	press('a')
	ev := <-events
	require.Equal(t, midi.NoteOn, ev.Kind)
	require.Equal(t, 60, ev.Note)
	require.False(t, ev.At.IsZero())

	press('a')
	ev = <-events
	require.Equal(t, midi.NoteOff, ev.Kind)

	// Octave up moves the home row.
	press('x')
	press('a')
	ev = <-events
	require.Equal(t, 72, ev.Note)

	press('d')
	<-events
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	released := []int{(<-events).Note, (<-events).Note}
	require.Equal(t, []int{72, 76}, released)

	// Unbound keys do nothing.
	press('q')
	require.Empty(t, events)
}

func TestBackedUpEvents(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	events := make(chan midi.Event)
	m := chordui.New("virtual", slot, events, vpiano.NewKeyboard(vpiano.C4), time.Millisecond)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	require.ErrorIs(t, m.Err(), chordui.ErrBackedUp)
	require.Contains(t, m.View(), "backed up")
}

func TestPianoMatchesDelivered(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	events := make(chan midi.Event, 1)
	piano := vpiano.NewKeyboard(vpiano.C4)
	m := chordui.New("virtual", slot, events, piano, time.Millisecond)

	press := func(r rune) {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	press('a')
	press('d') // no room
	require.ErrorIs(t, m.Err(), chordui.ErrBackedUp)
	require.Equal(t, []int{60}, piano.Latched(), "only the delivered note is latched")
	require.Equal(t, midi.Event{Kind: midi.NoteOn, Note: 60}, withoutTime(<-events))

	// Pressing again once there is room delivers the dropped note.
	press('d')
	require.Equal(t, midi.Event{Kind: midi.NoteOn, Note: 64}, withoutTime(<-events))
	require.Equal(t, []int{60, 64}, piano.Latched())

	// A release that does not fit keeps the remaining notes latched, so
	// esc can send them again.
	events <- midi.Event{}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, []int{60, 64}, piano.Latched())
	<-events

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, midi.Event{Kind: midi.NoteOff, Note: 60}, withoutTime(<-events))
	require.Equal(t, []int{64}, piano.Latched())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, midi.Event{Kind: midi.NoteOff, Note: 64}, withoutTime(<-events))
	require.Empty(t, piano.Latched())
}

func withoutTime(ev midi.Event) midi.Event {
	ev.At = time.Time{}
	return ev
}

func TestSourceError(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	m := chordui.New("test", slot, nil, nil, time.Millisecond)

	m, _ = update(t, m, rmxerr.ErrMsg{Err: errors.New("port closed")})
	require.Contains(t, m.View(), "port closed")
}

func TestLatencyStats(t *testing.T) {
	slot := handoff.New[session.Bundle]()
	m := chordui.New("test", slot, nil, nil, time.Millisecond)

	b := bundleOf("C E G")
	b.At = time.Now().Add(-20 * time.Millisecond)
	slot.Publish(b)

	m, cmd := update(t, m, chordui.FrameMsg(time.Now()))
	require.NotNil(t, cmd)

	m, _ = update(t, m, rtt.CalcMsg{Latest: 20 * time.Millisecond, Avg: 20 * time.Millisecond})
	require.Contains(t, m.View(), "latency 20ms")
}
