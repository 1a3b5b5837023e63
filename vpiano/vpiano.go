// Package vpiano maps the qwerty keyboard to piano keys so notes can be
// played without a MIDI instrument.
package vpiano

import (
	"github.com/rapidmidiex/chordstrainer/midi"
	"github.com/rapidmidiex/chordstrainer/theory"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	Note struct {
		// MIDI note number, based on C4=60
		MIDI int
		// Pitch class of the note, ex: theory.CSharp
		Pitch theory.PitchClass
		// Denotes if note is sharp/flat ie. "black" key.
		IsAccidental bool
		// qwerty keyboard key binding.
		KeyBinding string
	}

	Notes []Note

	NoteKeyMap map[string]Note

	octave int

	// Keyboard latches notes: terminals report key presses but not
	// releases, so a second press of a key releases its note.
	Keyboard struct {
		octave  octave
		latched map[int]bool
	}
)

const (
	Cneg2 octave = iota - 2
	Cneg1
	C0
	C1
	C2
	C3
	C4
	C5
	C6
	C7
	C8
)

// qwerty keys ordered to allow for fingering similar to a real piano.
var qwertyKeys = []string{"a", "w", "s", "e", "d", "f", "t", "g", "y", "h", "u", "j", "k", "o", "l", "p", ";", "'"}

// Name of the note, ex: "C#".
func (n Note) Name() string { return n.Pitch.String() }

// MakeOctaveNotes creates list of piano note, MIDI #, qwerty keyboard bindings given an octave name, for example "C4". The keybindings start a C, using the home row for naturals and q-row for accidentals, in an attempt to map close to actual piano fingerings.
func MakeOctaveNotes(octave octave) Notes {
	// MIDI number for C0
	midiC0 := 12
	notes := make(Notes, 0, len(qwertyKeys))

	for i, kb := range qwertyKeys {
		num := midiC0 + (theory.Octave * int(octave)) + i
		pc := theory.FromMIDI(num)
		notes = append(notes, Note{
			MIDI:         num,
			Pitch:        pc,
			IsAccidental: len(pc.String()) > 1,
			KeyBinding:   kb,
		})
	}

	return notes
}

func (notes Notes) ToBindingMap() NoteKeyMap {
	nMap := make(NoteKeyMap, len(notes))
	for _, n := range notes {
		nMap[n.KeyBinding] = n
	}
	return nMap
}

func InRange(midiNum int) bool {
	return midiNum > 20 && midiNum < 128
}

func NewKeyboard(start octave) *Keyboard {
	return &Keyboard{octave: start, latched: make(map[int]bool)}
}

// Octave returns the octave the home row starts on.
func (k *Keyboard) Octave() octave { return k.octave }

// Notes returns the current key layout.
func (k *Keyboard) Notes() Notes { return MakeOctaveNotes(k.octave) }

// Shift moves the layout by delta octaves, staying on the piano. Latched
// notes stay latched.
func (k *Keyboard) Shift(delta int) {
	next := k.octave + octave(delta)
	notes := MakeOctaveNotes(next)
	if !InRange(notes[0].MIDI) || !InRange(notes[len(notes)-1].MIDI) {
		return
	}
	k.octave = next
}

// Press returns the event that toggles the note bound to key. ok is false
// if key is not bound. The latch changes only when the event is passed to
// Apply, so an event that could not be delivered leaves the keyboard as is.
func (k *Keyboard) Press(key string) (ev midi.Event, ok bool) {
	n, ok := k.Notes().ToBindingMap()[key]
	if !ok {
		return midi.Event{}, false
	}
	if k.latched[n.MIDI] {
		return midi.Event{Kind: midi.NoteOff, Note: n.MIDI}, true
	}
	return midi.Event{Kind: midi.NoteOn, Note: n.MIDI}, true
}

// ReleaseAll returns a note off for every latched note, lowest first. Apply
// each one once it is delivered.
func (k *Keyboard) ReleaseAll() []midi.Event {
	held := k.Latched()
	events := make([]midi.Event, len(held))
	for i, n := range held {
		events[i] = midi.Event{Kind: midi.NoteOff, Note: n}
	}
	return events
}

// Apply latches a delivered note on and unlatches a delivered note off.
func (k *Keyboard) Apply(ev midi.Event) {
	switch ev.Kind {
	case midi.NoteOn:
		k.latched[ev.Note] = true
	case midi.NoteOff:
		delete(k.latched, ev.Note)
	}
}

// Latched returns the latched MIDI notes, lowest first.
func (k *Keyboard) Latched() []int {
	held := maps.Keys(k.latched)
	slices.Sort(held)
	return held
}
