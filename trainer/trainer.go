// Package trainer runs the chord quiz: it draws random target chords and
// checks the chord being played against them.
package trainer

import (
	"fmt"
	"math/rand"

	"github.com/rapidmidiex/chordstrainer/chords"
	"github.com/rapidmidiex/chordstrainer/theory"
	"golang.org/x/exp/slices"
)

type (
	// Target is the chord the player is asked to play.
	Target struct {
		// Root name followed by the drawn token, e.g. "F#m7" or "C Major".
		Name    string
		Root    theory.PitchClass
		Quality chords.Quality
		Pattern chords.Pattern
	}

	// State of the quiz.
	State int

	// Status is what the presentation layer needs about the quiz.
	Status struct {
		Target  Target
		State   State
		Correct bool
	}

	Trainer struct {
		rng    *rand.Rand
		tier   chords.Tier
		tokens []string
		target Target
		state  State
	}
)

// Correct and Advancing both hold a pending answer; a new target is drawn
// on the next silence.
const (
	// AwaitingInput waits for the player to sound the target.
	AwaitingInput State = iota
	// Correct is entered on the update that sounded the target.
	Correct
	// Advancing is entered on later updates while notes still sound.
	Advancing
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting input"
	case Correct:
		return "correct"
	case Advancing:
		return "advancing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// New returns a trainer drawing from tier with a first target already set.
func New(rng *rand.Rand, tier chords.Tier) *Trainer {
	t := &Trainer{
		rng:    rng,
		tier:   tier,
		tokens: chords.Tokens(tier),
	}
	t.target = t.Generate()
	return t
}

// Generate draws a root uniformly from the twelve pitch classes and a token
// uniformly from the tier's names and abbreviations.
//
// It panics if a drawn token cannot be resolved: the tier listing and the
// dictionary have drifted apart.
func (t *Trainer) Generate() Target {
	if len(t.tokens) == 0 {
		panic(fmt.Sprintf("trainer: tier %s has no tokens", t.tier))
	}
	root := theory.PitchClass(t.rng.Intn(theory.Octave))
	token := t.tokens[t.rng.Intn(len(t.tokens))]
	q, err := chords.Lookup(token)
	if err != nil {
		panic(fmt.Sprintf("trainer: tier %s: %v", t.tier, err))
	}
	return Target{
		Name:    targetName(root, token),
		Root:    root,
		Quality: q,
		Pattern: q.Pattern(),
	}
}

// Full quality names read better spaced ("C Major"), abbreviations attached
// ("Cmaj7").
func targetName(root theory.PitchClass, token string) string {
	if q, err := chords.Lookup(token); err == nil && q.Name() == token {
		return root.String() + " " + token
	}
	return root.String() + token
}

// Target returns the current target.
func (t *Trainer) Target() Target { return t.target }

// Status returns the current quiz status.
func (t *Trainer) Status() Status {
	return Status{Target: t.target, State: t.state, Correct: t.pending()}
}

func (t *Trainer) pending() bool {
	return t.state == Correct || t.state == Advancing
}

// Observe advances the quiz with the matches for the current sounding set.
//
// While a correct answer is pending, silence (no match) draws a new target.
// Otherwise the primary match is compared with the target. The error is
// non-nil only when a name cannot be resolved against the dictionary.
func (t *Trainer) Observe(matches []chords.Match) (Status, error) {
	if len(matches) == 0 {
		if t.pending() {
			t.target = t.Generate()
			t.state = AwaitingInput
		}
		return t.Status(), nil
	}
	if t.pending() {
		t.state = Advancing
		return t.Status(), nil
	}
	ok, err := IsEquivalent(matches[0].Name, t.target.Name)
	if err != nil {
		return t.Status(), err
	}
	if ok {
		t.state = Correct
	}
	return t.Status(), nil
}

// IsEquivalent reports whether two chord names sound the same set of pitch
// classes, however they are named.
func IsEquivalent(a, b string) (bool, error) {
	na, err := absolute(a)
	if err != nil {
		return false, err
	}
	nb, err := absolute(b)
	if err != nil {
		return false, err
	}
	return slices.Equal(na, nb), nil
}

func absolute(name string) ([]theory.PitchClass, error) {
	root, q, err := chords.ParseName(name)
	if err != nil {
		return nil, err
	}
	notes := chords.Spell(root, q)
	slices.Sort(notes)
	return notes, nil
}
