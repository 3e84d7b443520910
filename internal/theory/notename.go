package theory

import (
	"math/rand"
	"strconv"
	"strings"
)

// noteNameOffsets maps lowercase note names (English spelling, sharps and
// flats, including enharmonic spellings like b# and cb) to semitone classes.
var noteNameOffsets = map[string]int{
	"c": 0, "b#": 0,
	"c#": 1, "db": 1,
	"d":  2,
	"d#": 3, "eb": 3,
	"e": 4, "fb": 4,
	"f": 5, "e#": 5,
	"f#": 6, "gb": 6,
	"g":  7,
	"g#": 8, "ab": 8,
	"a":  9,
	"a#": 10, "bb": 10,
	"b": 11, "cb": 11,
}

// frenchNoteOffsets maps lowercase French note names to semitone classes.
var frenchNoteOffsets = map[string]int{
	"do":  0,
	"do#": 1, "reb": 1,
	"re": 2, "ré": 2,
	"re#": 3, "ré#": 3, "mib": 3,
	"mi": 4,
	"fa": 5,
	"fa#": 6, "solb": 6,
	"sol":  7,
	"sol#": 8, "lab": 8,
	"la":   9,
	"la#": 10, "sib": 10,
	"si": 11,
}

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var frenchSharpNames = [12]string{"Do", "Do#", "Re", "Re#", "Mi", "Fa", "Fa#", "Sol", "Sol#", "La", "La#", "Si"}

// SemitoneClass looks up a note name (English or French, case-insensitive)
// and returns its semitone class 0-11.
func SemitoneClass(name string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if v, ok := noteNameOffsets[key]; ok {
		return v, true
	}
	if v, ok := frenchNoteOffsets[key]; ok {
		return v, true
	}
	return 0, false
}

// NoteName converts a MIDI note number to its name, e.g. 60 -> "C4".
// Octave numbering follows the convention where middle C (60) is C4.
func NoteName(noteNumber int) string {
	if noteNumber < 0 || noteNumber > 127 {
		return "Invalid"
	}
	octave := noteNumber/12 - 1
	return sharpNames[noteNumber%12] + strconv.Itoa(octave)
}

// NoteNumber converts a note name with octave ("C4", "db-1", "f#5") to a
// MIDI note number, or -1 if the string is not a valid note.
func NoteNumber(name string) int {
	input := strings.ToLower(strings.TrimSpace(name))
	if input == "" {
		return -1
	}
	notePart := input[:1]
	rest := input[1:]
	if len(input) > 1 && (input[1] == '#' || input[1] == 'b') {
		notePart = input[:2]
		rest = input[2:]
	}
	offset, ok := noteNameOffsets[notePart]
	if !ok {
		return -1
	}
	octave, ok := parseOctave(rest)
	if !ok {
		return -1
	}
	midiNote := (octave+1)*12 + offset
	if midiNote < 0 || midiNote > 127 {
		return -1
	}
	return midiNote
}

// IsNoteEqual reports whether a MIDI note number matches a note name,
// ignoring the octave.
func IsNoteEqual(noteNumber int, name string) bool {
	if noteNumber < 0 || noteNumber > 127 {
		return false
	}
	class, ok := SemitoneClass(name)
	if !ok {
		return false
	}
	return noteNumber%12 == class
}

// FrenchNoteName converts a standard note name to its French equivalent
// ("C#" -> "Do#"). Returns "" if the name is not recognized.
func FrenchNoteName(name string) string {
	class, ok := SemitoneClass(name)
	if !ok {
		return ""
	}
	return frenchSharpNames[class]
}

// FrenchChordName converts a standard chord name ("Am", "G7", "C#M7") to
// its French form ("Lam", "Sol7", "Do#M7"). Returns the input unchanged if
// the root cannot be parsed.
func FrenchChordName(name string) string {
	input := strings.TrimSpace(name)
	if input == "" {
		return ""
	}
	root, suffix := splitChordName(input)
	french := FrenchNoteName(root)
	if french == "" {
		return name
	}
	return french + suffix
}

// RandomNoteName returns a random note name using sharp spellings.
func RandomNoteName(rng *rand.Rand) string {
	return sharpNames[rng.Intn(12)]
}

// RandomChordName returns a random major or minor chord name ("C#M", "Am").
func RandomChordName(rng *rand.Rand) string {
	root := sharpNames[rng.Intn(12)]
	if rng.Intn(2) == 0 {
		return root + "M"
	}
	return root + "m"
}

// RandomSeventhChord returns a random seventh chord name ("CM7", "Am7", "G7").
func RandomSeventhChord(rng *rand.Rand) string {
	types := [3]string{"M7", "m7", "7"}
	return sharpNames[rng.Intn(12)] + types[rng.Intn(3)]
}

// RandomFifthInterval returns a random power-chord name ("C5", "F#5").
func RandomFifthInterval(rng *rand.Rand) string {
	return sharpNames[rng.Intn(12)] + "5"
}

// splitChordName splits a chord name into root and quality suffix, checking
// multi-character suffixes first. No suffix means a single note.
func splitChordName(input string) (root, suffix string) {
	switch {
	case strings.HasSuffix(input, "M7"):
		return input[:len(input)-2], "M7"
	case strings.HasSuffix(input, "m7"):
		return input[:len(input)-2], "m7"
	case strings.HasSuffix(input, "7"):
		return input[:len(input)-1], "7"
	case strings.HasSuffix(input, "5"):
		return input[:len(input)-1], "5"
	case strings.HasSuffix(input, "m"):
		return input[:len(input)-1], "m"
	case strings.HasSuffix(input, "M"):
		return input[:len(input)-1], "M"
	}
	return input, ""
}

func parseOctave(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
