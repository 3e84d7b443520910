package pattern

import (
	"math/rand"

	"github.com/cbegin/arpgen-go/internal/theory"
)

// Octave and velocity bounds for interpreter state.
const (
	MinOctave = 0
	MaxOctave = 7

	MinVelocity     = 16
	MaxVelocity     = 127
	DefaultVelocity = 96

	DefaultOctave = 4
)

// NoNote marks the absence of a note in State and Result fields.
const NoNote = -1

// Config is the immutable per-call configuration snapshot a Step consults.
// It carries no performance state; that lives in State.
type Config struct {
	BaseOctave   int
	Mode         theory.ResolutionMode
	AbsentPolicy theory.AbsentDegreePolicy
}

// DefaultConfig returns the configuration the original voice starts with.
func DefaultConfig() Config {
	return Config{
		BaseOctave:   DefaultOctave,
		Mode:         theory.ResolveDegreesFolded,
		AbsentPolicy: theory.AbsentNext,
	}
}

// State is the mutable performance state threaded through Step calls. It
// is a plain value so callers can snapshot, serialize or reset it without
// touching the interpreter.
type State struct {
	Cursor     int
	Octave     int
	Velocity   int
	LastNote   int // NoNote when nothing is sounding
	LastDegree int

	// One-shot modifiers armed by prefixes; cleared per the rules in Step.
	OneShotOctave   int // NoNote when unset
	OneShotVelocity int // 0 when unset
	Accent          int // pending semitone shift from # / b prefixes
}

// NewState returns performance state at its defaults for the given base
// octave and global velocity.
func NewState(baseOctave, velocity int) State {
	return State{
		Octave:        clampInt(baseOctave, MinOctave, MaxOctave),
		Velocity:      clampInt(velocity, MinVelocity, MaxVelocity),
		LastNote:      NoNote,
		OneShotOctave: NoNote,
	}
}

// Result is the outcome of one interpreter step.
type Result struct {
	// NoteOff is the note to turn off before anything else, NoNote if none.
	NoteOff int
	// NoteOn is the note to start at the step's offset, NoNote for a rest.
	NoteOn   int
	Velocity int
	// Sustain means the step produced no events at all: the sounding note,
	// if any, keeps ringing.
	Sustain bool
}

// Interpreter owns a pattern string and its precomputed step geometry. It
// holds no performance state.
type Interpreter struct {
	pattern     string
	stepOffsets []int
}

func New(pattern string) *Interpreter {
	it := &Interpreter{}
	it.SetPattern(pattern)
	return it
}

func (it *Interpreter) SetPattern(p string) {
	it.pattern = p
	it.stepOffsets = it.stepOffsets[:0]
	segStart := 0
	i := 0
	for i < len(p) {
		switch c := p[i]; {
		case c == 'o' || c == 'O' || c == 'v' || c == 'V':
			i += 2
			if i > len(p) {
				i = len(p)
			}
		case c == '#' || c == 'b':
			i++
		case isTerminal(c):
			it.stepOffsets = append(it.stepOffsets, segStart)
			i++
			segStart = i
		default:
			i++
		}
	}
}

func (it *Interpreter) Pattern() string { return it.pattern }

// StepCount returns the number of musical steps in the pattern: terminal
// tokens only, prefixes and inert characters excluded.
func (it *Interpreter) StepCount() int { return len(it.stepOffsets) }

// StepOffset maps a step index (wrapped into the step count) to the
// character offset where that step's command sequence begins, including
// any prefixes.
func (it *Interpreter) StepOffset(step int) int {
	n := len(it.stepOffsets)
	if n == 0 {
		return 0
	}
	return it.stepOffsets[((step%n)+n)%n]
}

// StepAt maps a character offset back to the index of the step whose
// command sequence contains it.
func (it *Interpreter) StepAt(offset int) int {
	n := len(it.stepOffsets)
	if n == 0 {
		return 0
	}
	for i := n - 1; i >= 0; i-- {
		if it.stepOffsets[i] <= offset {
			return i
		}
	}
	return 0
}

// Step consumes prefixes and exactly one terminal token from the pattern,
// updates the performance state and resolves the result against the chord.
//
// One-shot octave state survives into the next step only when that step
// carries its own octave prefix, so relative one-shots (o+ o+) compound;
// a step without an octave prefix starts from the persistent octave. A
// rest consumes all pending one-shot state.
func (it *Interpreter) Step(st *State, ch *theory.Chord, cfg Config, rng *rand.Rand) Result {
	res := Result{NoteOff: NoNote, NoteOn: NoNote}
	n := len(it.pattern)
	if n == 0 {
		return res
	}

	degree := NoNote
	found := false
	sawOctave := false
	sawVelocity := false
	span := ch.Span(cfg.Mode)

	// Bounded to twice the pattern length: a pattern of nothing but
	// prefixes and inert characters resolves to a rest.
	for scanned := 0; scanned < 2*n; scanned++ {
		c := it.pattern[st.Cursor]
		st.Cursor = (st.Cursor + 1) % n
		switch {
		case c == 'o' || c == 'O':
			arg := it.pattern[st.Cursor]
			st.Cursor = (st.Cursor + 1) % n
			cur := st.Octave
			if st.OneShotOctave != NoNote {
				cur = st.OneShotOctave
			}
			val, ok := octaveArg(arg, cur)
			if !ok {
				continue
			}
			if c == 'O' {
				st.Octave = val
				st.OneShotOctave = NoNote
			} else {
				st.OneShotOctave = val
				sawOctave = true
			}
		case c == 'v' || c == 'V':
			arg := it.pattern[st.Cursor]
			st.Cursor = (st.Cursor + 1) % n
			if arg < '0' || arg > '9' {
				continue
			}
			vel := clampInt(16*int(arg-'0'), MinVelocity, MaxVelocity)
			if c == 'V' {
				st.Velocity = vel
			} else {
				st.OneShotVelocity = vel
				sawVelocity = true
			}
		case c == '#':
			st.Accent++
		case c == 'b':
			st.Accent--
		case c == '_':
			res.Sustain = true
			return res
		case c >= '0' && c <= '9':
			// Degrees are 1-indexed; a bare 0 is not a degree and rests.
			if c == '0' {
				degree = NoNote
			} else {
				degree = int(c-'0') - 1
			}
			found = true
		case c == '+':
			if span > 0 {
				degree = (st.LastDegree + 1) % span
			}
			found = true
		case c == '-':
			if span > 0 {
				degree = (st.LastDegree + span - 1) % span
			}
			found = true
		case c == '?':
			if present := ch.PresentDegrees(cfg.Mode); len(present) > 0 {
				degree = present[rng.Intn(len(present))]
			}
			found = true
		case c == '"' || c == '=':
			degree = st.LastDegree
			found = true
		case c == '.':
			degree = NoNote
			found = true
		default:
			// Inert character: formatting only.
		}
		if found {
			break
		}
	}

	// One-shots from earlier steps expire unless re-armed this step.
	if !sawOctave {
		st.OneShotOctave = NoNote
	}
	if !sawVelocity {
		st.OneShotVelocity = 0
	}

	// The previous note always stops once the new command is known; only a
	// sustain (handled above) keeps it alive.
	if st.LastNote != NoNote {
		res.NoteOff = st.LastNote
		st.LastNote = NoNote
	}

	if degree == NoNote {
		// A rest consumes pending one-shot state.
		st.OneShotOctave = NoNote
		st.OneShotVelocity = 0
		st.Accent = 0
		return res
	}

	value, ok := ch.Resolve(degree, cfg.Mode, cfg.AbsentPolicy)
	if ok {
		octave := st.Octave
		if st.OneShotOctave != NoNote {
			octave = st.OneShotOctave
		}
		var note int
		if cfg.Mode == theory.ResolveRawAsPlayed {
			// The stored value already encodes an octave; the override is
			// a relative shift from the base octave.
			note = value + 12*(octave-cfg.BaseOctave)
		} else {
			note = value + 12*octave
		}
		note += st.Accent
		note = clampInt(note, 0, 127)
		vel := st.Velocity
		if st.OneShotVelocity != 0 {
			vel = st.OneShotVelocity
		}
		res.NoteOn = note
		res.Velocity = vel
		st.LastNote = note
	}
	st.LastDegree = degree
	st.Accent = 0
	st.OneShotVelocity = 0
	return res
}

func octaveArg(arg byte, current int) (int, bool) {
	switch {
	case arg == '+':
		return clampInt(current+1, MinOctave, MaxOctave), true
	case arg == '-':
		return clampInt(current-1, MinOctave, MaxOctave), true
	case arg >= '0' && arg <= '9':
		return clampInt(int(arg-'0'), MinOctave, MaxOctave), true
	}
	return 0, false
}

func isTerminal(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c == '+' || c == '-' || c == '?' || c == '"' || c == '=' || c == '.' || c == '_':
		return true
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
