// Package chords holds the chord dictionary and the matcher that names the
// chords formed by a set of pitch classes.
package chords

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// ErrUnknownChord is returned when a name or abbreviation is not in the
// dictionary.
var ErrUnknownChord = errors.New("unknown chord")

type (
	// Quality identifies one chord quality in the dictionary.
	Quality int

	// Pattern is an ascending, duplicate free list of semitone offsets from
	// the root. It always starts at 0.
	Pattern []int

	entry struct {
		name    string
		pattern Pattern
		abbrs   []string
	}

	// Tier is a named subset of the dictionary used to bound quiz difficulty.
	Tier int
)

const (
	Major Quality = iota
	Minor
	Major7
	Augmented
	Diminished
	Diminished7
	HalfDiminished7
	MinorMajor7
	Augmented7
	AugmentedMajor7
	Minor7
	Major6
	Minor6
	Dominant7
	Sus2
	Sus4
	Add9

	numQualities = iota
)

const (
	Basic Tier = iota
	Intermediate
	Advanced
)

// Indexed by Quality. Order matters: it is the matcher's discovery order.
var table = [numQualities]entry{
	Major:           {"Major", Pattern{0, 4, 7}, []string{"maj", "M", "Maj", "Δ"}},
	Minor:           {"Minor", Pattern{0, 3, 7}, []string{"min", "m", "Min", "-"}},
	Major7:          {"Major7", Pattern{0, 4, 7, 11}, []string{"maj7", "M7", "Maj7", "Δ7"}},
	Augmented:       {"Augmented", Pattern{0, 4, 8}, []string{"aug", "+"}},
	Diminished:      {"Diminished", Pattern{0, 3, 6}, []string{"dim", "°"}},
	Diminished7:     {"Diminished7", Pattern{0, 3, 6, 9}, []string{"dim7", "°7"}},
	HalfDiminished7: {"Half-diminished7", Pattern{0, 3, 6, 10}, []string{"m7b5", "-7b5"}},
	MinorMajor7:     {"Minor-major7", Pattern{0, 3, 7, 11}, []string{"mM7", "-M7"}},
	Augmented7:      {"Augmented7", Pattern{0, 4, 8, 10}, []string{"+7"}},
	AugmentedMajor7: {"Augmented major7", Pattern{0, 4, 8, 11}, []string{"+M7"}},
	Minor7:          {"Minor7", Pattern{0, 3, 7, 10}, []string{"m7", "-7"}},
	Major6:          {"Major6", Pattern{0, 4, 7, 9}, []string{"M6", "6"}},
	Minor6:          {"Minor6", Pattern{0, 3, 7, 9}, []string{"m6", "-6"}},
	Dominant7:       {"Dominant7", Pattern{0, 4, 7, 10}, []string{"7"}},
	Sus2:            {"Sus2", Pattern{0, 2, 7}, []string{"sus2"}},
	Sus4:            {"Sus4", Pattern{0, 5, 7}, []string{"sus4"}},
	Add9:            {"Add9", Pattern{0, 2, 4, 7}, []string{"add9"}},
}

var tiers = map[Tier]struct {
	name      string
	qualities []Quality
}{
	Basic: {"basic", []Quality{
		Major, Minor, Augmented, Diminished, Sus2, Sus4,
	}},
	Intermediate: {"intermediate", []Quality{
		Major, Minor, Major7, Augmented, Diminished, Minor7, Major6, Minor6, Dominant7, Sus2, Sus4, Add9,
	}},
	Advanced: {"advanced", Qualities()},
}

// Qualities lists every quality in dictionary order.
func Qualities() []Quality {
	qs := make([]Quality, numQualities)
	for i := range qs {
		qs[i] = Quality(i)
	}
	return qs
}

func (q Quality) valid() bool { return q >= 0 && q < numQualities }

// Name returns the canonical quality name, e.g. "Major7".
func (q Quality) Name() string {
	if !q.valid() {
		return fmt.Sprintf("Quality(%d)", int(q))
	}
	return table[q].name
}

func (q Quality) String() string { return q.Name() }

// Pattern returns a copy of the quality's interval pattern.
func (q Quality) Pattern() Pattern {
	if !q.valid() {
		return nil
	}
	return slices.Clone(table[q].pattern)
}

// Abbreviations returns a copy of the quality's abbreviations.
func (q Quality) Abbreviations() []string {
	if !q.valid() {
		return nil
	}
	return slices.Clone(table[q].abbrs)
}

// Lookup resolves a quality by exact name or by any of its abbreviations.
// The first dictionary entry that owns the token wins.
func Lookup(token string) (Quality, error) {
	for _, q := range Qualities() {
		e := table[q]
		if e.name == token || slices.Contains(e.abbrs, token) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("lookup %q: %w", token, ErrUnknownChord)
}

// Tiers lists the difficulty tiers from easiest to hardest.
func Tiers() []Tier {
	return []Tier{Basic, Intermediate, Advanced}
}

func (t Tier) String() string {
	if info, ok := tiers[t]; ok {
		return info.name
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// Qualities returns the qualities in the tier, in dictionary order.
func (t Tier) Qualities() []Quality {
	return slices.Clone(tiers[t].qualities)
}

// ParseTier resolves a tier by name, case insensitively.
func ParseTier(name string) (Tier, error) {
	for _, t := range Tiers() {
		if strings.EqualFold(t.String(), strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", name)
}

// Tokens returns every quality name and abbreviation in the tier. It is the
// sampling universe for quiz generation, so qualities with more
// abbreviations are drawn more often.
func Tokens(t Tier) []string {
	var out []string
	for _, q := range t.Qualities() {
		out = append(out, table[q].name)
		out = append(out, table[q].abbrs...)
	}
	return out
}
