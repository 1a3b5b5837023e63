// Package tracker folds a stream of note on/off events into the set of keys
// currently held down.
package tracker

import (
	"github.com/rapidmidiex/chordstrainer/theory"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Tracker is not safe for concurrent use. It is owned by the goroutine that
// receives note events.
type Tracker struct {
	// Held raw MIDI note numbers.
	held map[int]struct{}
}

func New() *Tracker {
	return &Tracker{held: make(map[int]struct{})}
}

// NoteOn marks a key as held. It reports false if the key was already held.
func (t *Tracker) NoteOn(note int) bool {
	if _, ok := t.held[note]; ok {
		return false
	}
	t.held[note] = struct{}{}
	return true
}

// NoteOff releases a key. It reports false if the key was not held.
func (t *Tracker) NoteOff(note int) bool {
	if _, ok := t.held[note]; !ok {
		return false
	}
	delete(t.held, note)
	return true
}

// Len returns the number of held keys.
func (t *Tracker) Len() int { return len(t.held) }

// Keys returns the held raw note numbers, lowest first.
func (t *Tracker) Keys() []int {
	keys := maps.Keys(t.held)
	slices.Sort(keys)
	return keys
}

// Snapshot returns the held keys folded to pitch classes, lowest key first.
// Octave doublings stay in the sequence, so the first element is always the
// bass note.
func (t *Tracker) Snapshot() []theory.PitchClass {
	keys := t.Keys()
	pcs := make([]theory.PitchClass, len(keys))
	for i, k := range keys {
		pcs[i] = theory.FromMIDI(k)
	}
	return pcs
}
