// Package theory models the twelve-tone chromatic scale as pitch classes.
package theory

import (
	"regexp"
	"strings"
)

// PitchClass is one of the twelve chromatic steps, counted from A.
// Arithmetic on pitch classes is modulo 12.
type PitchClass int

const (
	A PitchClass = iota
	ASharp
	B
	C
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
)

// Octave is the number of distinct pitch classes.
const Octave = 12

// LowestMIDI is the MIDI number of the lowest key on an 88-key piano (A0).
// It folds to pitch class A.
const LowestMIDI = 21

var names = [Octave]string{"A", "A#", "B", "C", "C#", "D", "D#", "E", "F", "F#", "G", "G#"}

// Natural positions of the letters A-G.
var letters = map[byte]PitchClass{
	'A': A, 'B': B, 'C': C, 'D': D, 'E': E, 'F': F, 'G': G,
}

var noteToken = regexp.MustCompile(`[A-Ga-g][#b]{0,2}`)

// Mod folds any integer onto a pitch class.
func Mod(n int) PitchClass {
	return PitchClass(((n % Octave) + Octave) % Octave)
}

// String returns the canonical sharp-based name.
func (p PitchClass) String() string {
	return names[Mod(int(p))]
}

// Transpose moves p up by semitones (down when negative).
func (p PitchClass) Transpose(semitones int) PitchClass {
	return Mod(int(p) + semitones)
}

// Interval returns the ascending distance in semitones from one pitch
// class to another, in [0,12).
func Interval(from, to PitchClass) int {
	return int(Mod(int(to) - int(from)))
}

// FromMIDI folds a raw MIDI note number onto its pitch class.
// Numbers are not range checked.
func FromMIDI(n int) PitchClass {
	return Mod(n - LowestMIDI)
}

// Parse scans text for note names and returns their pitch classes in order,
// duplicates preserved. A note name is a letter A-G in either case followed
// by up to two '#' or 'b' symbols. Anything else is skipped.
//
//	Parse("C D J b D# G## Ab AB") // C D B D# A G# A B
func Parse(text string) []PitchClass {
	tokens := noteToken.FindAllString(text, -1)
	pcs := make([]PitchClass, 0, len(tokens))
	for _, tok := range tokens {
		pos := int(letters[strings.ToUpper(tok[:1])[0]])
		for _, sym := range tok[1:] {
			switch sym {
			case '#':
				pos++
			case 'b':
				pos--
			}
		}
		pcs = append(pcs, Mod(pos))
	}
	return pcs
}

// ParseOne parses the first note name in text. ok is false if there is none.
func ParseOne(text string) (p PitchClass, ok bool) {
	pcs := Parse(text)
	if len(pcs) == 0 {
		return 0, false
	}
	return pcs[0], true
}

// Names returns the canonical name of every pitch class in pcs.
func Names(pcs []PitchClass) []string {
	out := make([]string, len(pcs))
	for i, p := range pcs {
		out[i] = p.String()
	}
	return out
}

// Render joins the canonical names with single spaces. Parse(Render(pcs))
// reproduces pcs.
func Render(pcs []PitchClass) string {
	return strings.Join(Names(pcs), " ")
}

// All returns the twelve pitch classes in ascending order from A.
func All() []PitchClass {
	out := make([]PitchClass, Octave)
	for i := range out {
		out[i] = PitchClass(i)
	}
	return out
}
