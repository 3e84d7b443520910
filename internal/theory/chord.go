package theory

import (
	"sort"
	"strings"
)

// DegreeCount is the size of a chord's harmonic skeleton: fundamental,
// 3rd, 5th, 7th, 9th, 11th and 13th.
const DegreeCount = 7

// Absent marks an empty degree slot.
const Absent = -1

// ResolutionMode selects how a degree index resolves against a chord.
type ResolutionMode int

const (
	// ResolveDegreesFolded resolves through the 7-slot degree skeleton.
	ResolveDegreesFolded ResolutionMode = iota
	// ResolveRawAsPlayed resolves through the literal as-played note list.
	ResolveRawAsPlayed
	// ResolveScaleWalk resolves through degrees derived from consecutive
	// scale steps rather than stacked thirds.
	ResolveScaleWalk
)

// AbsentDegreePolicy controls substitution when a resolved slot is empty.
type AbsentDegreePolicy int

const (
	AbsentOff AbsentDegreePolicy = iota
	AbsentNext
	AbsentPrevious
)

// Chord is a rebuildable value: a named 7-slot degree array plus an
// optional raw note list. Degree slots hold semitone offsets from octave
// placement; scale-derived slots may exceed 11 when octave-corrected so
// the fundamental stays the lowest voice.
type Chord struct {
	name    string
	degrees [DegreeCount]int
	span    int
	raw     []int
}

func emptyChord(name string) Chord {
	c := Chord{name: name, span: DegreeCount}
	for i := range c.degrees {
		c.degrees[i] = Absent
	}
	return c
}

// ParseChord builds a chord from a name string ("C", "Am", "G7", "F#M7",
// "D5"). Recognized suffixes are M7, m7, 7, 5, m and M; a bare root is a
// single note. Unrecognized input yields an all-absent chord, never an
// error: degree resolution against it produces rests.
func ParseChord(name string) Chord {
	c := emptyChord(name)
	input := strings.TrimSpace(name)
	if input == "" {
		return c
	}
	rootStr, suffix := splitChordName(input)
	root, ok := SemitoneClass(rootStr)
	if !ok {
		return c
	}
	c.degrees[0] = root
	switch suffix {
	case "M7":
		c.degrees[1] = (root + 4) % 12
		c.degrees[2] = (root + 7) % 12
		c.degrees[3] = (root + 11) % 12
	case "m7":
		c.degrees[1] = (root + 3) % 12
		c.degrees[2] = (root + 7) % 12
		c.degrees[3] = (root + 10) % 12
	case "7":
		c.degrees[1] = (root + 4) % 12
		c.degrees[2] = (root + 7) % 12
		c.degrees[3] = (root + 10) % 12
	case "5":
		c.degrees[2] = (root + 7) % 12
	case "m":
		c.degrees[1] = (root + 3) % 12
		c.degrees[2] = (root + 7) % 12
	case "M":
		c.degrees[1] = (root + 4) % 12
		c.degrees[2] = (root + 7) % 12
	}
	return c
}

// ChordFromScale derives a chord from a scale degree. When stacked, the
// slots are filled with diatonic thirds counted in scale steps from the
// degree; otherwise with consecutive scale notes. Either way each slot is
// raised an octave when its class would sit below the fundamental, so the
// fundamental is always the lowest voice. The degree wraps into the
// scale's note count.
func ChordFromScale(s Scale, degree int, stacked bool) Chord {
	c := emptyChord(s.Type().String())
	fundamental := s.Note(degree)
	step := 1
	if stacked {
		step = 2
	}
	for i := 0; i < DegreeCount; i++ {
		v := s.Note(degree + i*step)
		if v < fundamental {
			v += 12
		}
		c.degrees[i] = v
	}
	if s.NoteCount() < DegreeCount {
		c.span = s.NoteCount()
	}
	return c
}

// ChordFromNotes sets the chord directly from a held-note collection. In
// folded mode each note reduces to a semitone class re-anchored onto an
// ascending path starting at the lowest note's class, deduplicated, and
// fills up to 7 slots. In as-played mode the literal MIDI notes are sorted
// and stored unmodified, octaves and duplicate classes preserved.
func ChordFromNotes(notes []int, asPlayed bool) Chord {
	c := emptyChord("")
	if len(notes) == 0 {
		return c
	}
	sorted := make([]int, len(notes))
	copy(sorted, notes)
	sort.Ints(sorted)
	if asPlayed {
		c.raw = sorted
		return c
	}
	anchor := ((sorted[0] % 12) + 12) % 12
	seen := map[int]bool{}
	vals := []int{}
	for _, n := range sorted {
		v := ((n % 12) + 12) % 12
		if v < anchor {
			v += 12
		}
		if !seen[v] {
			seen[v] = true
			vals = append(vals, v)
		}
	}
	sort.Ints(vals)
	n := len(vals)
	if n > DegreeCount {
		n = DegreeCount
	}
	for i := 0; i < n; i++ {
		c.degrees[i] = vals[i]
	}
	c.span = n
	return c
}

// Name returns the name the chord was built from, if any.
func (c *Chord) Name() string { return c.name }

// Degree returns the raw slot value (Absent when empty). The index wraps
// into the 7 slots.
func (c *Chord) Degree(index int) int {
	return c.degrees[((index%DegreeCount)+DegreeCount)%DegreeCount]
}

// Span returns the degree count used for wrap-around arithmetic: the raw
// note count in as-played mode, otherwise the chord's natural degree count
// (7, or fewer for chords built from short scales or few held notes).
func (c *Chord) Span(mode ResolutionMode) int {
	if mode == ResolveRawAsPlayed {
		return len(c.raw)
	}
	return c.span
}

// RawNotes returns the as-played note list, nil unless built with
// ChordFromNotes in as-played mode.
func (c *Chord) RawNotes() []int { return c.raw }

// PresentDegrees lists the degree indices eligible for random selection:
// every raw index in as-played mode, otherwise the non-absent slots
// within the span.
func (c *Chord) PresentDegrees(mode ResolutionMode) []int {
	if mode == ResolveRawAsPlayed {
		out := make([]int, len(c.raw))
		for i := range out {
			out[i] = i
		}
		return out
	}
	var out []int
	for i := 0; i < c.span; i++ {
		if c.degrees[i] != Absent {
			out = append(out, i)
		}
	}
	return out
}

// Resolve maps a degree index to a concrete value. In as-played mode the
// value is a full MIDI note number; otherwise a semitone offset to be
// placed at an octave by the caller. Absent slots defer to the policy;
// when no slot is present at all the fundamental slot is the unconditional
// fallback, which yields a rest when it too is absent.
func (c *Chord) Resolve(index int, mode ResolutionMode, policy AbsentDegreePolicy) (int, bool) {
	if mode == ResolveRawAsPlayed {
		n := len(c.raw)
		if n == 0 {
			return 0, false
		}
		return c.raw[((index%n)+n)%n], true
	}
	span := c.span
	if span <= 0 {
		return 0, false
	}
	i := ((index % span) + span) % span
	if v := c.degrees[i]; v != Absent {
		return v, true
	}
	switch policy {
	case AbsentNext:
		for k := 1; k < span; k++ {
			if v := c.degrees[(i+k)%span]; v != Absent {
				return v, true
			}
		}
	case AbsentPrevious:
		for k := 1; k < span; k++ {
			if v := c.degrees[(i+span-k)%span]; v != Absent {
				return v, true
			}
		}
	}
	if policy != AbsentOff && c.degrees[0] != Absent {
		return c.degrees[0], true
	}
	return 0, false
}

// SemitoneSet returns the sorted set of present semitone classes, useful
// for comparing against held MIDI notes where order and octave are
// irrelevant.
func (c *Chord) SemitoneSet() []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range c.degrees {
		if v == Absent {
			continue
		}
		class := v % 12
		if !seen[class] {
			seen[class] = true
			out = append(out, class)
		}
	}
	sort.Ints(out)
	return out
}

// ChordEqual reports whether a collection of held MIDI notes forms the
// named chord, regardless of octave or inversion.
func ChordEqual(heldNotes []int, name string) bool {
	if strings.TrimSpace(name) == "" || len(heldNotes) == 0 {
		return false
	}
	target := ParseChord(name)
	targetSet := target.SemitoneSet()
	if len(targetSet) == 0 {
		return false
	}
	seen := map[int]bool{}
	var played []int
	for _, n := range heldNotes {
		class := ((n % 12) + 12) % 12
		if !seen[class] {
			seen[class] = true
			played = append(played, class)
		}
	}
	sort.Ints(played)
	if len(played) != len(targetSet) {
		return false
	}
	for i := range played {
		if played[i] != targetSet[i] {
			return false
		}
	}
	return true
}
