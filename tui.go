// Package chordstrainer names the chords played on a MIDI instrument and
// quizzes the player on them, in the terminal.
package chordstrainer

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/rapidmidiex/chordstrainer/chordui"
	"github.com/rapidmidiex/chordstrainer/config"
	"github.com/rapidmidiex/chordstrainer/handoff"
	"github.com/rapidmidiex/chordstrainer/keymap"
	"github.com/rapidmidiex/chordstrainer/midi"
	"github.com/rapidmidiex/chordstrainer/pickerui"
	"github.com/rapidmidiex/chordstrainer/rmxerr"
	"github.com/rapidmidiex/chordstrainer/session"
	"github.com/rapidmidiex/chordstrainer/trainer"
	"github.com/rapidmidiex/chordstrainer/vpiano"
)

// ********
// Code heavily based on "Project Journal"
// https://github.com/bashbunni/pjs
// https://www.youtube.com/watch?v=uJ2egAkSkjg&t=319s
// ********

type (
	appView int

	// pipeline is one running input: a source feeding a session that
	// publishes to the UI.
	pipeline struct {
		src     midi.Source
		cancel  context.CancelFunc
		results *handoff.Slot[session.Bundle]
		events  chan midi.Event
		// Result of the source's Listen.
		done chan error
	}

	sourceDoneMsg struct {
		p   *pipeline
		err error
	}

	mainModel struct {
		cfg     *config.Config
		drv     drivers.Driver
		curView appView
		picker  tea.Model
		chords  tea.Model
		pipe    *pipeline
		log     *logrus.Entry
	}
)

const (
	pickerView appView = iota
	chordView
)

// Buffered so virtual keyboard bursts and fast files do not stall.
const eventBuffer = 64

func newPipeline(cfg *config.Config, src midi.Source) *pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	p := &pipeline{
		src:     src,
		cancel:  cancel,
		results: handoff.New[session.Bundle](),
		events:  make(chan midi.Event, eventBuffer),
		done:    make(chan error, 1),
	}

	sess := session.New(trainer.New(cfg.Rand(), cfg.QuizTier()), p.results)
	go func() {
		if err := sess.Run(ctx, p.events); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Error("session stopped")
		}
	}()

	if src != nil {
		go func() {
			log := logrus.WithField("source", src.Name())
			log.Info("starting")
			err := src.Listen(ctx, p.events)
			log.WithError(err).Info("finished")
			p.done <- err
		}()
	}
	return p
}

func (p *pipeline) stop() {
	if p != nil {
		p.cancel()
	}
}

// wait reports the end of the pipeline's source.
func (p *pipeline) wait() tea.Cmd {
	return func() tea.Msg {
		return sourceDoneMsg{p: p, err: <-p.done}
	}
}

// configuredSource returns the source named by cfg, or nil if the user
// should pick one.
func configuredSource(cfg *config.Config, drv drivers.Driver) (midi.Source, error) {
	switch {
	case cfg.Port != "":
		if drv == nil {
			return nil, errors.New("no MIDI driver available")
		}
		in, err := midi.FindPort(drv, cfg.Port)
		if err != nil {
			return nil, err
		}
		return midi.PortSource{In: in}, nil
	case cfg.File != "":
		return midi.FileSource{Path: cfg.File, Speed: cfg.FileSpeed, Loop: cfg.Loop}, nil
	case cfg.Jam != "":
		return midi.JamSource{URL: cfg.Jam}, nil
	}
	return nil, nil
}

func portLister(drv drivers.Driver) pickerui.Lister {
	if drv == nil {
		return nil
	}
	return func() ([]string, error) {
		ins, err := drv.Ins()
		if err != nil {
			return nil, err
		}
		names := make([]string, len(ins))
		for i, in := range ins {
			names[i] = in.String()
		}
		return names, nil
	}
}

func NewModel(cfg *config.Config, drv drivers.Driver) (mainModel, error) {
	m := mainModel{
		cfg:     cfg,
		drv:     drv,
		curView: pickerView,
		picker:  pickerui.New(portLister(drv)),
		log:     logrus.WithField("component", "tui"),
	}

	src, err := configuredSource(cfg, drv)
	if err != nil {
		return mainModel{}, err
	}
	if src != nil {
		m.start(src, src.Name(), nil)
	}
	return m, nil
}

// start replaces the running pipeline.
func (m *mainModel) start(src midi.Source, name string, piano *vpiano.Keyboard) {
	m.pipe.stop()
	m.pipe = newPipeline(m.cfg, src)
	m.chords = chordui.New(name, m.pipe.results, m.pipe.events, piano, m.cfg.FrameInterval())
	m.curView = chordView
}

func (m mainModel) startCmds() tea.Cmd {
	cmds := []tea.Cmd{m.chords.Init()}
	if m.pipe.src != nil {
		cmds = append(cmds, m.pipe.wait())
	}
	return tea.Batch(cmds...)
}

func (m mainModel) Init() tea.Cmd {
	if m.curView == chordView {
		return m.startCmds()
	}
	return m.picker.Init()
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keymap.DefaultMapping.Quit) {
			m.pipe.stop()
			return m, tea.Quit
		}

	case pickerui.Selected:
		src, name, piano, err := m.selected(msg)
		if err != nil {
			cmds = append(cmds, rmxerr.Cmd(err))
			break
		}
		m.start(src, name, piano)
		return m, m.startCmds()

	case chordui.LeaveMsg:
		m.pipe.stop()
		m.pipe = nil
		m.curView = pickerView
		m.picker = pickerui.New(portLister(m.drv))
		return m, m.picker.Init()

	case sourceDoneMsg:
		if msg.p != m.pipe {
			return m, nil
		}
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.log.WithError(msg.err).Error("input failed")
			cmds = append(cmds, rmxerr.Cmd(msg.err))
		}
	}

	switch m.curView {
	case pickerView:
		m.picker, cmd = m.picker.Update(msg)
	case chordView:
		m.chords, cmd = m.chords.Update(msg)
	}

	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m mainModel) selected(sel pickerui.Selected) (midi.Source, string, *vpiano.Keyboard, error) {
	if sel.Virtual {
		return nil, pickerui.VirtualKeyboard, vpiano.NewKeyboard(vpiano.C4), nil
	}
	if m.drv == nil {
		return nil, "", nil, errors.New("no MIDI driver available")
	}
	in, err := midi.FindPort(m.drv, sel.Port)
	if err != nil {
		return nil, "", nil, err
	}
	src := midi.PortSource{In: in}
	return src, src.Name(), nil, nil
}

func (m mainModel) View() string {
	switch m.curView {
	case chordView:
		return m.chords.View()
	default:
		return m.picker.View()
	}
}

// Run shows the UI until the user quits. drv may be nil, leaving only the
// virtual keyboard and the file and jam inputs.
func Run(cfg *config.Config, drv drivers.Driver) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logFile, err := cfg.SetupLogging()
	if err != nil {
		return err
	}
	defer logFile.Close()

	m, err := NewModel(cfg, drv)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
