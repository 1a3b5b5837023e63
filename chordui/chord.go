// Package chordui is the main screen: it polls the session's results once
// per frame and renders the sounding notes, the chords they form and the
// quiz.
package chordui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rapidmidiex/chordstrainer/chords"
	"github.com/rapidmidiex/chordstrainer/handoff"
	"github.com/rapidmidiex/chordstrainer/historyui"
	"github.com/rapidmidiex/chordstrainer/keymap"
	"github.com/rapidmidiex/chordstrainer/midi"
	"github.com/rapidmidiex/chordstrainer/rmxerr"
	"github.com/rapidmidiex/chordstrainer/rtt"
	"github.com/rapidmidiex/chordstrainer/session"
	"github.com/rapidmidiex/chordstrainer/styles"
	"github.com/rapidmidiex/chordstrainer/vpiano"
	"golang.org/x/term"
)

// ErrBackedUp is reported when the session is not keeping up with the
// virtual keyboard.
var ErrBackedUp = errors.New("note events backed up")

type (
	// FrameMsg drives the polling loop, one per frame.
	FrameMsg time.Time

	// LeaveMsg asks for the input picker.
	LeaveMsg struct{}

	Model struct {
		// Source description for the status bar.
		source string
		// Latest results from the session, read once per frame.
		results *handoff.Slot[session.Bundle]
		// Virtual keyboard events into the session.
		events chan<- midi.Event
		// Nil unless the virtual keyboard is the input.
		piano *vpiano.Keyboard
		frame time.Duration

		bundle session.Bundle
		// Index of the chord shown when there are several readings.
		alt int
		// Show the training panel.
		train bool
		// Scrollback of played chords and answers.
		history tea.Model

		pings *rtt.Window
		stats rtt.CalcMsg

		help help.Model
		err  error
	}
)

func New(source string, results *handoff.Slot[session.Bundle], events chan<- midi.Event, piano *vpiano.Keyboard, frame time.Duration) Model {
	return Model{
		source:  source,
		results: results,
		events:  events,
		piano:   piano,
		frame:   frame,
		train:   true,
		history: historyui.New(40, 5),
		pings:   rtt.NewWindow(50),
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case FrameMsg:
		if b, ok := m.results.TryRecv(); ok {
			m.bundle = b
			m.alt = 0
			var cmd tea.Cmd
			m.history, cmd = m.history.Update(historyui.BundleMsg(b))
			cmds = append(cmds, cmd)
			if !b.At.IsZero() {
				latency := time.Time(msg).Sub(b.At)
				m.pings.Add(latency)
				cmds = append(cmds, rtt.CalcStats(latency, m.pings.Samples()))
			}
		}
		cmds = append(cmds, m.tick())

	case rtt.CalcMsg:
		m.stats = msg

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		cmds = append(cmds, cmd)

	case rmxerr.ErrMsg:
		m.err = msg

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keymap.DefaultMapping.NextChord):
			if n := len(m.bundle.Chords); n > 0 {
				m.alt = (m.alt + 1) % n
			}
		case key.Matches(msg, keymap.DefaultMapping.ToggleTrain):
			m.train = !m.train
		case key.Matches(msg, keymap.DefaultMapping.GoBack):
			if m.piano != nil {
				m.send(m.piano.ReleaseAll()...)
			}
			cmds = append(cmds, func() tea.Msg { return LeaveMsg{} })
		case m.piano == nil:
			// piano keys only mean something with the virtual keyboard
		case key.Matches(msg, keymap.DefaultMapping.ReleaseAll):
			m.send(m.piano.ReleaseAll()...)
		case key.Matches(msg, keymap.DefaultMapping.OctaveDown):
			m.piano.Shift(-1)
		case key.Matches(msg, keymap.DefaultMapping.OctaveUp):
			m.piano.Shift(1)
		default:
			if ev, ok := m.piano.Press(msg.String()); ok {
				m.send(ev)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// send hands virtual keyboard events to the session in order, without
// blocking the update loop. An event is latched on the piano only once the
// session has it; the first one that does not fit stops the batch.
func (m *Model) send(events ...midi.Event) {
	now := time.Now()
	for _, ev := range events {
		ev.At = now
		select {
		case m.events <- ev:
			m.piano.Apply(ev)
		default:
			m.err = fmt.Errorf("%s: %w", ev, ErrBackedUp)
			return
		}
	}
}

// Bundle returns the results currently on screen.
func (m Model) Bundle() session.Bundle { return m.bundle }

// Shown returns the chord reading currently displayed.
func (m Model) Shown() (chords.Match, bool) {
	if len(m.bundle.Chords) == 0 {
		return chords.Match{}, false
	}
	return m.bundle.Chords[m.alt%len(m.bundle.Chords)], true
}

// Err returns the last error shown to the user.
func (m Model) Err() error { return m.err }

// Training reports whether the training panel is shown.
func (m Model) Training() bool { return m.train }

func (m Model) View() string {
	physicalWidth, _, _ := term.GetSize(int(os.Stdout.Fd()))
	docStyle := styles.DocStyle
	if physicalWidth > 0 {
		docStyle = docStyle.MaxWidth(physicalWidth)
	}

	doc := strings.Builder{}
	doc.WriteString(m.chordView() + "\n")
	if m.train {
		doc.WriteString(m.trainView() + "\n")
	}
	doc.WriteString("\n" + styles.BaseStyle.Render(m.history.View()) + "\n")
	if m.piano != nil {
		doc.WriteString("\n" + m.pianoView() + "\n")
	}
	if m.err != nil {
		doc.WriteString("\n" + styles.RenderError(m.err.Error()) + "\n")
	}
	doc.WriteString("\n" + m.statusView())
	doc.WriteString("\n" + m.help.View(keymap.DefaultMapping))

	return docStyle.Render(doc.String())
}

func (m Model) chordView() string {
	if len(m.bundle.Notes) == 0 {
		return styles.DimStyle.Render("Play some notes")
	}

	match, ok := m.Shown()
	notes := make([]string, len(m.bundle.Notes))
	degrees := make([]string, len(m.bundle.Notes))
	for i, n := range m.bundle.Notes {
		notes[i] = styles.NoteName.Render(n.String())
		if ok {
			degrees[i] = styles.Degree.Render(match.Degrees[n])
		}
	}
	grid := lipgloss.JoinHorizontal(lipgloss.Top, notes...)
	if ok {
		grid = lipgloss.JoinVertical(lipgloss.Left, grid, lipgloss.JoinHorizontal(lipgloss.Top, degrees...))
	}

	if !ok {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.ChordName.Render("?"),
			grid,
		)
	}

	name := match.Name
	var hint string
	if n := len(m.bundle.Chords); n > 1 {
		name += styles.DimStyle.Render(fmt.Sprintf("  (%d/%d)", m.alt%n+1, n))
		hint = styles.DimStyle.Render("space: alternate chord")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.ChordName.Render(name),
		styles.Abbreviation.Render(strings.Join(match.Abbreviations, "  ")),
		"",
		grid,
		hint,
	)
}

func (m Model) trainView() string {
	st := m.bundle.Training
	if st.Target.Name == "" {
		return ""
	}
	lines := []string{
		"Play " + styles.Target.Render(st.Target.Name),
		styles.DimStyle.Render("root " + st.Target.Root.String()),
	}
	if st.Correct {
		lines = append(lines, styles.Correct.Render("Correct! Release to continue"))
	}
	return styles.TrainPanel.Render(strings.Join(lines, "\n"))
}

func (m Model) pianoView() string {
	held := map[int]bool{}
	for _, n := range m.piano.Latched() {
		held[n] = true
	}
	var keys []string
	for _, n := range m.piano.Notes() {
		style := styles.PianoKey
		if n.IsAccidental {
			style = styles.PianoKeyAccidental
		}
		if held[n.MIDI] {
			style = styles.PianoKeyDown
		}
		keys = append(keys, style.Render(n.Name()+"\n\n("+n.KeyBinding+")"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, keys...)
}

func (m Model) statusView() string {
	status := styles.StatusStyle.Render(m.source)
	ping := styles.PingStyle.Render(fmt.Sprintf("latency %v avg %v min %v max %v",
		m.stats.Latest.Round(time.Millisecond),
		m.stats.Avg,
		m.stats.Min.Round(time.Millisecond),
		m.stats.Max.Round(time.Millisecond),
	))
	gap := styles.Width - lipgloss.Width(status) - lipgloss.Width(ping)
	if gap < 0 {
		gap = 0
	}
	fill := styles.StatusText.Render(strings.Repeat(" ", gap))
	return styles.StatusBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, status, fill, ping))
}
