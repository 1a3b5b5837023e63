package midi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/smf"
)

type (
	// FileSource replays the notes of a Standard MIDI File in real time.
	FileSource struct {
		Path string
		// Playback rate; 0 means 1.
		Speed float64
		// Start over when the file ends.
		Loop bool
	}

	// Cue is an event at an offset from the start of a file.
	Cue struct {
		Offset time.Duration
		Event  Event
	}
)

func (f FileSource) Name() string { return f.Path }

// ReadFile parses a Standard MIDI File.
func ReadFile(path string) (s *smf.SMF, err error) {
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse %s: %v", path, r)
		}
	}()

	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err = smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Timeline merges the note events of every track in time order. At equal
// offsets note offs come first so a repeated note is released before it is
// struck again.
func Timeline(s *smf.SMF) []Cue {
	var cues []Cue
	for _, track := range s.Tracks {
		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			var ch, key, vel uint8
			var e Event
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel):
				e = Event{Kind: NoteOn, Note: int(key)}
				if vel == 0 {
					e.Kind = NoteOff
				}
			case ev.Message.GetNoteOff(&ch, &key, &vel):
				e = Event{Kind: NoteOff, Note: int(key)}
			default:
				continue
			}
			offset := time.Duration(s.TimeAt(absTicks)) * time.Microsecond
			cues = append(cues, Cue{Offset: offset, Event: e})
		}
	}

	sort.SliceStable(cues, func(i, j int) bool {
		if cues[i].Offset != cues[j].Offset {
			return cues[i].Offset < cues[j].Offset
		}
		return cues[i].Event.Kind == NoteOff && cues[j].Event.Kind != NoteOff
	})
	return cues
}

func (f FileSource) Listen(ctx context.Context, out chan<- Event) error {
	s, err := ReadFile(f.Path)
	if err != nil {
		return err
	}
	cues := Timeline(s)
	if len(cues) == 0 {
		return errors.New("no notes in " + f.Path)
	}

	log := logrus.WithField("source", f.Name())
	log.Infof("replaying %d note events", len(cues))
	for {
		if err := f.play(ctx, cues, out); err != nil {
			return nil
		}
		if !f.Loop {
			log.Info("replay finished")
			<-ctx.Done()
			return nil
		}
	}
}

// play returns ctx.Err() if ctx is done before the last cue is sent.
func (f FileSource) play(ctx context.Context, cues []Cue, out chan<- Event) error {
	speed := f.Speed
	if speed <= 0 {
		speed = 1
	}
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	held := make(map[int]bool)
	defer func() {
		// Release whatever is still down so the session does not keep a
		// stale chord between loops.
		for note := range held {
			if !send(ctx, out, Event{Kind: NoteOff, Note: note}) {
				return
			}
		}
	}()

	for _, c := range cues {
		due := start.Add(time.Duration(float64(c.Offset) / speed))
		timer.Reset(time.Until(due))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
		if !send(ctx, out, c.Event) {
			return ctx.Err()
		}
		if c.Event.Kind == NoteOn {
			held[c.Event.Note] = true
		} else {
			delete(held, c.Event.Note)
		}
	}
	return nil
}
