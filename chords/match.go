package chords

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rapidmidiex/chordstrainer/theory"
	"golang.org/x/exp/slices"
)

// Scale-degree label for each interval above the root.
var degreeLabels = [theory.Octave]string{"0", "2b", "2", "3b", "3", "4", "5b", "5", "6b", "6", "7b", "7"}

var displayName = regexp.MustCompile(`^([A-Ga-g][#b]{0,2})\s*(.+)$`)

// Match is one chord reading of a set of notes.
type Match struct {
	Root    theory.PitchClass
	Quality Quality
	// Display name, e.g. "C Sus2".
	Name string
	// Root-prefixed abbreviations, e.g. "Cmaj", "CM".
	Abbreviations []string
	// Scale degree of every sounding note relative to Root.
	Degrees map[theory.PitchClass]string
}

// DegreeLabel names an interval in semitones as a scale degree ("3b", "5"...).
func DegreeLabel(semitones int) string {
	return degreeLabels[theory.Mod(semitones)]
}

// Name returns the display name of a root and quality, e.g. "A Major".
func Name(root theory.PitchClass, q Quality) string {
	return root.String() + " " + q.Name()
}

// Spell returns the absolute pitch classes of a chord, in pattern order.
func Spell(root theory.PitchClass, q Quality) []theory.PitchClass {
	pattern := q.Pattern()
	out := make([]theory.PitchClass, len(pattern))
	for i, p := range pattern {
		out[i] = root.Transpose(p)
	}
	return out
}

// ParseName splits a chord name into its root and quality. It accepts
// display names ("C# Minor7") and abbreviated names ("C#m7", "Cmaj").
func ParseName(name string) (theory.PitchClass, Quality, error) {
	m := displayName.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, 0, fmt.Errorf("parse chord name %q: %w", name, ErrUnknownChord)
	}
	root, _ := theory.ParseOne(m[1])
	q, err := Lookup(strings.TrimSpace(m[2]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse chord name %q: %w", name, err)
	}
	return root, q, nil
}

// PatternOf returns the interval pattern of notes heard against tonic.
func PatternOf(tonic theory.PitchClass, notes []theory.PitchClass) Pattern {
	p := make(Pattern, 0, len(notes))
	for _, n := range notes {
		p = append(p, theory.Interval(tonic, n))
	}
	slices.Sort(p)
	return slices.Compact(p)
}

func newMatch(root theory.PitchClass, q Quality, notes []theory.PitchClass) Match {
	abbrs := q.Abbreviations()
	for i, a := range abbrs {
		abbrs[i] = root.String() + a
	}
	degrees := make(map[theory.PitchClass]string, len(notes))
	for _, n := range notes {
		degrees[n] = DegreeLabel(theory.Interval(root, n))
	}
	return Match{
		Root:          root,
		Quality:       q,
		Name:          Name(root, q),
		Abbreviations: abbrs,
		Degrees:       degrees,
	}
}

// Find returns every chord whose pattern exactly matches the notes.
//
// notes is the sounding sequence from lowest to highest and may repeat pitch
// classes. Each distinct pitch class is tried as a root, in order of first
// appearance, against the dictionary in table order. If one of the matches is
// rooted on the lowest note, the list is rotated so that it comes first;
// otherwise discovery order is kept. No match yields an empty result.
func Find(notes []theory.PitchClass) []Match {
	if len(notes) == 0 {
		return nil
	}

	var tonics []theory.PitchClass
	for _, n := range notes {
		if !slices.Contains(tonics, n) {
			tonics = append(tonics, n)
		}
	}

	type key struct {
		root theory.PitchClass
		q    Quality
	}
	seen := make(map[key]bool)
	var found []Match
	for _, tonic := range tonics {
		pattern := PatternOf(tonic, notes)
		for _, q := range Qualities() {
			if !slices.Equal(pattern, table[q].pattern) {
				continue
			}
			k := key{tonic, q}
			if seen[k] {
				continue
			}
			seen[k] = true
			found = append(found, newMatch(tonic, q, notes))
		}
	}
	return preferBass(found, notes[0])
}

// FindString parses free note text and runs Find on it.
func FindString(text string) []Match {
	return Find(theory.Parse(text))
}

// preferBass rotates matches so the first one rooted on bass leads.
func preferBass(matches []Match, bass theory.PitchClass) []Match {
	i := slices.IndexFunc(matches, func(m Match) bool { return m.Root == bass })
	if i <= 0 {
		return matches
	}
	rotated := make([]Match, 0, len(matches))
	rotated = append(rotated, matches[i:]...)
	return append(rotated, matches[:i]...)
}

// Names returns the display name of every match, in order.
func Names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}
