// Package session is the event side of the app: it folds note events into
// the held set, names the chord, advances the quiz and publishes the result
// for the UI.
package session

import (
	"context"
	"time"

	"github.com/rapidmidiex/chordstrainer/chords"
	"github.com/rapidmidiex/chordstrainer/handoff"
	"github.com/rapidmidiex/chordstrainer/midi"
	"github.com/rapidmidiex/chordstrainer/theory"
	"github.com/rapidmidiex/chordstrainer/tracker"
	"github.com/rapidmidiex/chordstrainer/trainer"
	"github.com/sirupsen/logrus"
)

type (
	// Bundle is everything the UI renders for one held set.
	Bundle struct {
		// Sounding notes, lowest first. Octave doublings repeat.
		Notes []theory.PitchClass
		// Matching chords, the bass-rooted reading first.
		Chords   []chords.Match
		Training trainer.Status
		// When the event behind this bundle was received.
		At time.Time
	}

	Session struct {
		held    *tracker.Tracker
		quiz    *trainer.Trainer
		results *handoff.Slot[Bundle]
		log     *logrus.Entry
	}
)

func New(quiz *trainer.Trainer, results *handoff.Slot[Bundle]) *Session {
	return &Session{
		held:    tracker.New(),
		quiz:    quiz,
		results: results,
		log:     logrus.WithField("component", "session"),
	}
}

// NoteNames returns the sounding note names, lowest first.
func (b Bundle) NoteNames() []string {
	return theory.Names(b.Notes)
}

// Names returns the chord display names.
func (b Bundle) Names() []string {
	return chords.Names(b.Chords)
}

// Abbreviations returns the abbreviations of every chord, aligned with Names.
func (b Bundle) Abbreviations() [][]string {
	out := make([][]string, len(b.Chords))
	for i, m := range b.Chords {
		out[i] = m.Abbreviations
	}
	return out
}

// Degrees returns note name to degree label maps, aligned with Names.
func (b Bundle) Degrees() []map[string]string {
	out := make([]map[string]string, len(b.Chords))
	for i, m := range b.Chords {
		d := make(map[string]string, len(m.Degrees))
		for pc, label := range m.Degrees {
			d[pc.String()] = label
		}
		out[i] = d
	}
	return out
}

// Current evaluates the held set without changing it.
func (s *Session) Current() Bundle {
	notes := s.held.Snapshot()
	return Bundle{
		Notes:    notes,
		Chords:   chords.Find(notes),
		Training: s.quiz.Status(),
		At:       time.Now(),
	}
}

// Handle applies one event and returns the re-evaluated bundle. ok is false
// for events that are not note on/off; they leave the session untouched.
func (s *Session) Handle(ev midi.Event) (b Bundle, ok bool) {
	switch ev.Kind {
	case midi.NoteOn:
		s.held.NoteOn(ev.Note)
	case midi.NoteOff:
		if !s.held.NoteOff(ev.Note) {
			s.log.Warnf("note off for unheld note %d", ev.Note)
		}
	default:
		s.log.Debugf("ignoring %s", ev)
		return Bundle{}, false
	}

	notes := s.held.Snapshot()
	b = Bundle{Notes: notes, Chords: chords.Find(notes), At: ev.At}
	st, err := s.quiz.Observe(b.Chords)
	if err != nil {
		s.log.WithError(err).Errorf("quiz could not resolve %q against target %q", b.Names(), st.Target.Name)
	}
	b.Training = st
	return b, true
}

// Run consumes events until ctx is done or events is closed, publishing a
// bundle after every note event.
func (s *Session) Run(ctx context.Context, events <-chan midi.Event) error {
	s.results.Publish(s.Current())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			b, ok := s.Handle(ev)
			if !ok {
				continue
			}
			s.log.WithFields(logrus.Fields{
				"notes": theory.Render(b.Notes),
				"held":  s.held.Len(),
			}).Debugf("%s -> %v", ev, b.Names())
			s.results.Publish(b)
		}
	}
}
