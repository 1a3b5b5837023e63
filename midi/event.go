// Package midi turns note streams from MIDI ports, MIDI files and remote
// jam sessions into Events.
package midi

import (
	"context"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type (
	Kind int

	// Event is one inbound note event. Note is the raw MIDI note number and
	// is not range checked.
	Event struct {
		Kind Kind
		Note int
		// When the event was received.
		At time.Time
	}

	// Source delivers events until ctx is done or the source fails.
	Source interface {
		Name() string
		Listen(ctx context.Context, out chan<- Event) error
	}
)

const (
	Other Kind = iota
	NoteOn
	NoteOff
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case Other:
		return "other"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (e Event) String() string {
	return fmt.Sprintf("%s %d", e.Kind, e.Note)
}

// Decode maps a MIDI message to an Event. A note on with velocity 0 is a
// note off. Anything that is not a note message is Other.
func Decode(msg gomidi.Message) Event {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteOn(&ch, &key, &vel):
		if vel == 0 {
			return Event{Kind: NoteOff, Note: int(key)}
		}
		return Event{Kind: NoteOn, Note: int(key)}
	case msg.GetNoteOff(&ch, &key, &vel):
		return Event{Kind: NoteOff, Note: int(key)}
	}
	return Event{Kind: Other}
}

// send delivers ev unless ctx is done first.
func send(ctx context.Context, out chan<- Event, ev Event) bool {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
