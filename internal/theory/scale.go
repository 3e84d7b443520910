package theory

import "fmt"

// ScaleType selects one of the built-in scale/mode interval tables.
type ScaleType int

const (
	ScaleMajor ScaleType = iota
	ScaleDorian
	ScalePhrygian
	ScaleLydian
	ScaleMixolydian
	ScaleMinor
	ScaleLocrian
	ScaleHarmonicMinor
	ScaleMelodicMinor
	ScalePhrygianDominant
	ScaleDoubleHarmonic
	ScaleHungarianMinor
	ScaleNeapolitanMajor
	ScaleNeapolitanMinor
	ScaleEnigmatic
	ScalePersian
	ScaleAltered
	ScaleLydianDominant
	ScaleMajorPentatonic
	ScaleMinorPentatonic
	ScaleBlues
	ScaleMajorBlues
	ScaleWholeTone
	ScaleAugmented
	ScalePrometheus
	ScaleTritone
	ScaleDiminishedWholeHalf
	ScaleDiminishedHalfWhole
	ScaleBebopDominant
	ScaleBebopMajor
	ScaleHirajoshi

	numScaleTypes
)

// scaleIntervals lists semitone offsets from the root, one row per
// ScaleType. Rows have 5 to 8 entries.
var scaleIntervals = [numScaleTypes][]int{
	ScaleMajor:               {0, 2, 4, 5, 7, 9, 11},
	ScaleDorian:              {0, 2, 3, 5, 7, 9, 10},
	ScalePhrygian:            {0, 1, 3, 5, 7, 8, 10},
	ScaleLydian:              {0, 2, 4, 6, 7, 9, 11},
	ScaleMixolydian:          {0, 2, 4, 5, 7, 9, 10},
	ScaleMinor:               {0, 2, 3, 5, 7, 8, 10},
	ScaleLocrian:             {0, 1, 3, 5, 6, 8, 10},
	ScaleHarmonicMinor:       {0, 2, 3, 5, 7, 8, 11},
	ScaleMelodicMinor:        {0, 2, 3, 5, 7, 9, 11},
	ScalePhrygianDominant:    {0, 1, 4, 5, 7, 8, 10},
	ScaleDoubleHarmonic:      {0, 1, 4, 5, 7, 8, 11},
	ScaleHungarianMinor:      {0, 2, 3, 6, 7, 8, 11},
	ScaleNeapolitanMajor:     {0, 1, 3, 5, 7, 9, 11},
	ScaleNeapolitanMinor:     {0, 1, 3, 5, 7, 8, 11},
	ScaleEnigmatic:           {0, 1, 4, 6, 8, 10, 11},
	ScalePersian:             {0, 1, 4, 5, 6, 8, 11},
	ScaleAltered:             {0, 1, 3, 4, 6, 8, 10},
	ScaleLydianDominant:      {0, 2, 4, 6, 7, 9, 10},
	ScaleMajorPentatonic:     {0, 2, 4, 7, 9},
	ScaleMinorPentatonic:     {0, 3, 5, 7, 10},
	ScaleBlues:               {0, 3, 5, 6, 7, 10},
	ScaleMajorBlues:          {0, 2, 3, 4, 7, 9},
	ScaleWholeTone:           {0, 2, 4, 6, 8, 10},
	ScaleAugmented:           {0, 3, 4, 7, 8, 11},
	ScalePrometheus:          {0, 2, 4, 6, 9, 10},
	ScaleTritone:             {0, 1, 4, 6, 7, 10},
	ScaleDiminishedWholeHalf: {0, 2, 3, 5, 6, 8, 9, 11},
	ScaleDiminishedHalfWhole: {0, 1, 3, 4, 6, 7, 9, 10},
	ScaleBebopDominant:       {0, 2, 4, 5, 7, 9, 10, 11},
	ScaleBebopMajor:          {0, 2, 4, 5, 7, 8, 9, 11},
	ScaleHirajoshi:           {0, 2, 3, 7, 8},
}

var scaleNames = [numScaleTypes]string{
	ScaleMajor:               "major",
	ScaleDorian:              "dorian",
	ScalePhrygian:            "phrygian",
	ScaleLydian:              "lydian",
	ScaleMixolydian:          "mixolydian",
	ScaleMinor:               "minor",
	ScaleLocrian:             "locrian",
	ScaleHarmonicMinor:       "harmonic-minor",
	ScaleMelodicMinor:        "melodic-minor",
	ScalePhrygianDominant:    "phrygian-dominant",
	ScaleDoubleHarmonic:      "double-harmonic",
	ScaleHungarianMinor:      "hungarian-minor",
	ScaleNeapolitanMajor:     "neapolitan-major",
	ScaleNeapolitanMinor:     "neapolitan-minor",
	ScaleEnigmatic:           "enigmatic",
	ScalePersian:             "persian",
	ScaleAltered:             "altered",
	ScaleLydianDominant:      "lydian-dominant",
	ScaleMajorPentatonic:     "major-pentatonic",
	ScaleMinorPentatonic:     "minor-pentatonic",
	ScaleBlues:               "blues",
	ScaleMajorBlues:          "major-blues",
	ScaleWholeTone:           "whole-tone",
	ScaleAugmented:           "augmented",
	ScalePrometheus:          "prometheus",
	ScaleTritone:             "tritone",
	ScaleDiminishedWholeHalf: "diminished-whole-half",
	ScaleDiminishedHalfWhole: "diminished-half-whole",
	ScaleBebopDominant:       "bebop-dominant",
	ScaleBebopMajor:          "bebop-major",
	ScaleHirajoshi:           "hirajoshi",
}

func (t ScaleType) String() string {
	if t < 0 || t >= numScaleTypes {
		return "unknown"
	}
	return scaleNames[t]
}

// ScaleTypeByName resolves a scale name ("major", "minor-pentatonic") to
// its ScaleType. Case-sensitive lowercase names as listed by String().
func ScaleTypeByName(name string) (ScaleType, bool) {
	for t, n := range scaleNames {
		if n == name {
			return ScaleType(t), true
		}
	}
	return 0, false
}

// NumScaleTypes is the number of built-in scale types.
const NumScaleTypes = int(numScaleTypes)

// Scale is an immutable ordered sequence of semitone classes built from a
// root class and a scale type.
type Scale struct {
	root  int
	typ   ScaleType
	notes []int
}

// NewScale builds a scale from a root semitone class (wrapped into 0-11)
// and a type. Panics on an out-of-range type: scale types are fixed at
// compile time and cannot originate from user pattern or chord text.
func NewScale(root int, typ ScaleType) Scale {
	if typ < 0 || typ >= numScaleTypes {
		panic(fmt.Sprintf("theory: invalid scale type %d", int(typ)))
	}
	root = ((root % 12) + 12) % 12
	intervals := scaleIntervals[typ]
	notes := make([]int, len(intervals))
	for i, iv := range intervals {
		notes[i] = (root + iv) % 12
	}
	return Scale{root: root, typ: typ, notes: notes}
}

func (s Scale) Root() int       { return s.root }
func (s Scale) Type() ScaleType { return s.typ }
func (s Scale) NoteCount() int  { return len(s.notes) }

// Note returns the semitone class at a scale step, wrapping the step into
// the valid range.
func (s Scale) Note(step int) int {
	n := len(s.notes)
	if n == 0 {
		return 0
	}
	return s.notes[((step%n)+n)%n]
}

// Notes returns a copy of the ordered semitone classes.
func (s Scale) Notes() []int {
	out := make([]int, len(s.notes))
	copy(out, s.notes)
	return out
}
