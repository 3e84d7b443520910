package pattern

import (
	"math/rand"
	"testing"

	"github.com/cbegin/arpgen-go/internal/theory"
)

func testRig(patternText, chordName string) (*Interpreter, State, theory.Chord, Config, *rand.Rand) {
	it := New(patternText)
	st := NewState(DefaultOctave, DefaultVelocity)
	ch := theory.ParseChord(chordName)
	return it, st, ch, DefaultConfig(), rand.New(rand.NewSource(7))
}

// steps runs n steps and returns the results.
func steps(it *Interpreter, st *State, ch *theory.Chord, cfg Config, rng *rand.Rand, n int) []Result {
	out := make([]Result, n)
	for i := range out {
		out[i] = it.Step(st, ch, cfg, rng)
	}
	return out
}

func TestStepCounting(t *testing.T) {
	cases := []struct {
		pattern string
		count   int
	}{
		{"", 0},
		{"123", 3},
		{"o+1 2v53", 3},
		{"1_1.", 4},
		{"#b", 0},
		{"o5", 0},
		{"xyz", 0},
		{"?\"=+-", 5},
	}
	for _, tc := range cases {
		it := New(tc.pattern)
		if got := it.StepCount(); got != tc.count {
			t.Errorf("StepCount(%q) = %d, want %d", tc.pattern, got, tc.count)
		}
	}
}

func TestStepOffsets(t *testing.T) {
	it := New("o+1 2v53")
	want := []int{0, 3, 5}
	for i, w := range want {
		if got := it.StepOffset(i); got != w {
			t.Errorf("StepOffset(%d) = %d, want %d", i, got, w)
		}
	}
	// Wraps both ways.
	if got := it.StepOffset(3); got != 0 {
		t.Errorf("StepOffset(3) = %d, want 0", got)
	}
	if got := it.StepOffset(-1); got != 5 {
		t.Errorf("StepOffset(-1) = %d, want 5", got)
	}
	for off, wantStep := range map[int]int{0: 0, 2: 0, 3: 1, 4: 1, 5: 2, 7: 2} {
		if got := it.StepAt(off); got != wantStep {
			t.Errorf("StepAt(%d) = %d, want %d", off, got, wantStep)
		}
	}
}

func TestDegreeSequence(t *testing.T) {
	it, st, ch, cfg, rng := testRig("123", "CM")
	want := []int{48, 52, 55} // C4 E4 G4 at base octave 4
	for cycle := 0; cycle < 2; cycle++ {
		for i, w := range want {
			res := it.Step(&st, &ch, cfg, rng)
			if res.NoteOn != w {
				t.Fatalf("cycle %d step %d: NoteOn = %d, want %d", cycle, i, res.NoteOn, w)
			}
			if res.Velocity != DefaultVelocity {
				t.Fatalf("step %d: velocity = %d, want %d", i, res.Velocity, DefaultVelocity)
			}
		}
	}
}

func TestNoteOffPrecedesNextNote(t *testing.T) {
	it, st, ch, cfg, rng := testRig("12", "CM")
	first := it.Step(&st, &ch, cfg, rng)
	if first.NoteOff != NoNote {
		t.Fatalf("first step NoteOff = %d, want none", first.NoteOff)
	}
	second := it.Step(&st, &ch, cfg, rng)
	if second.NoteOff != 48 {
		t.Errorf("second step NoteOff = %d, want 48", second.NoteOff)
	}
	if second.NoteOn != 52 {
		t.Errorf("second step NoteOn = %d, want 52", second.NoteOn)
	}
}

func TestSustainKeepsNoteRinging(t *testing.T) {
	it, st, ch, cfg, rng := testRig("1_1", "CM")
	it.Step(&st, &ch, cfg, rng)
	sus := it.Step(&st, &ch, cfg, rng)
	if !sus.Sustain {
		t.Fatalf("expected sustain result")
	}
	if sus.NoteOff != NoNote || sus.NoteOn != NoNote {
		t.Fatalf("sustain produced events: off=%d on=%d", sus.NoteOff, sus.NoteOn)
	}
	if st.LastNote != 48 {
		t.Fatalf("sustain dropped the sounding note: %d", st.LastNote)
	}
	again := it.Step(&st, &ch, cfg, rng)
	if again.NoteOff != 48 || again.NoteOn != 48 {
		t.Errorf("retrigger = off %d on %d, want off 48 on 48", again.NoteOff, again.NoteOn)
	}
}

func TestRestStopsNote(t *testing.T) {
	it, st, ch, cfg, rng := testRig("1.", "CM")
	it.Step(&st, &ch, cfg, rng)
	rest := it.Step(&st, &ch, cfg, rng)
	if rest.NoteOff != 48 {
		t.Errorf("rest NoteOff = %d, want 48", rest.NoteOff)
	}
	if rest.NoteOn != NoNote {
		t.Errorf("rest NoteOn = %d, want none", rest.NoteOn)
	}
}

func TestZeroDigitRests(t *testing.T) {
	it, st, ch, cfg, rng := testRig("101", "CM")
	res := steps(it, &st, &ch, cfg, rng, 3)
	if res[1].NoteOn != NoNote {
		t.Errorf("0 should rest, got NoteOn %d", res[1].NoteOn)
	}
	if res[2].NoteOn != 48 {
		t.Errorf("step after 0 = %d, want 48", res[2].NoteOn)
	}
}

func TestRelativeStepCommands(t *testing.T) {
	it, st, ch, cfg, rng := testRig("1++-\"", "CM7")
	want := []int{48, 52, 55, 52, 52} // up, up, down, repeat
	for i, w := range want {
		res := it.Step(&st, &ch, cfg, rng)
		if res.NoteOn != w {
			t.Fatalf("step %d: NoteOn = %d, want %d", i, res.NoteOn, w)
		}
	}
}

func TestRelativeWrapsAroundSpan(t *testing.T) {
	// Walking down from the fundamental wraps to the top of the 7-slot
	// skeleton; the absent 13th substitutes the next present degree.
	it, st, ch, cfg, rng := testRig("1-", "CM")
	it.Step(&st, &ch, cfg, rng)
	res := it.Step(&st, &ch, cfg, rng)
	if res.NoteOn != 48 {
		t.Errorf("wrap down = %d, want 48 (absent 13th falls to next present)", res.NoteOn)
	}
	if st.LastDegree != 6 {
		t.Errorf("LastDegree = %d, want 6", st.LastDegree)
	}
}

func TestOneShotOctave(t *testing.T) {
	it, st, ch, cfg, rng := testRig("o+11", "CM")
	res := steps(it, &st, &ch, cfg, rng, 3)
	if res[0].NoteOn != 60 {
		t.Errorf("shifted step = %d, want 60", res[0].NoteOn)
	}
	if res[1].NoteOn != 48 {
		t.Errorf("one-shot leaked: %d, want 48", res[1].NoteOn)
	}
	if res[2].NoteOn != 60 {
		t.Errorf("cycle restart = %d, want 60", res[2].NoteOn)
	}
}

func TestOneShotOctaveCompounds(t *testing.T) {
	// Consecutive relative one-shots stack: +1 then +1 again from the
	// previous one-shot, not from the persistent octave.
	it, st, ch, cfg, rng := testRig("o+1o+1", "CM")
	res := steps(it, &st, &ch, cfg, rng, 2)
	if res[0].NoteOn != 60 {
		t.Errorf("first shifted step = %d, want 60", res[0].NoteOn)
	}
	if res[1].NoteOn != 72 {
		t.Errorf("second shifted step = %d, want 72", res[1].NoteOn)
	}
	if st.Octave != DefaultOctave {
		t.Errorf("persistent octave changed to %d", st.Octave)
	}
}

func TestPersistentOctave(t *testing.T) {
	it, st, ch, cfg, rng := testRig("O511", "CM")
	res := steps(it, &st, &ch, cfg, rng, 2)
	if res[0].NoteOn != 60 || res[1].NoteOn != 60 {
		t.Errorf("persistent octave: got %d, %d, want 60, 60", res[0].NoteOn, res[1].NoteOn)
	}
	if st.Octave != 5 {
		t.Errorf("octave = %d, want 5", st.Octave)
	}
}

func TestRestConsumesOneShots(t *testing.T) {
	it, st, ch, cfg, rng := testRig("o+.1", "CM")
	res := steps(it, &st, &ch, cfg, rng, 2)
	if res[0].NoteOn != NoNote {
		t.Fatalf("rest produced a note: %d", res[0].NoteOn)
	}
	if res[1].NoteOn != 48 {
		t.Errorf("note after consumed one-shot = %d, want 48", res[1].NoteOn)
	}
}

func TestOctaveClamps(t *testing.T) {
	it, st, ch, cfg, rng := testRig("O0o-1", "CM")
	res := it.Step(&st, &ch, cfg, rng)
	if res.NoteOn != 0 {
		t.Errorf("clamped bottom octave note = %d, want 0", res.NoteOn)
	}
	it2, st2, ch2, cfg2, rng2 := testRig("O7o+1", "CM")
	res = it2.Step(&st2, &ch2, cfg2, rng2)
	if res.NoteOn != 84 {
		t.Errorf("clamped top octave note = %d, want 84", res.NoteOn)
	}
}

func TestVelocityCommands(t *testing.T) {
	it, st, ch, cfg, rng := testRig("v911V31", "CM")
	res := steps(it, &st, &ch, cfg, rng, 3)
	if res[0].Velocity != 127 {
		t.Errorf("one-shot velocity = %d, want 127 (16*9 clamped)", res[0].Velocity)
	}
	if res[1].Velocity != DefaultVelocity {
		t.Errorf("one-shot velocity leaked: %d", res[1].Velocity)
	}
	if res[2].Velocity != 48 {
		t.Errorf("persistent velocity = %d, want 48", res[2].Velocity)
	}
	if st.Velocity != 48 {
		t.Errorf("state velocity = %d, want 48", st.Velocity)
	}
}

func TestVelocityFloor(t *testing.T) {
	it, st, ch, cfg, rng := testRig("v01", "CM")
	res := it.Step(&st, &ch, cfg, rng)
	if res.Velocity != MinVelocity {
		t.Errorf("velocity = %d, want floor %d", res.Velocity, MinVelocity)
	}
}

func TestAccents(t *testing.T) {
	it, st, ch, cfg, rng := testRig("#1b1 1 ##1", "CM")
	want := []int{49, 47, 48, 50}
	for i, w := range want {
		res := it.Step(&st, &ch, cfg, rng)
		if res.NoteOn != w {
			t.Fatalf("step %d: NoteOn = %d, want %d", i, res.NoteOn, w)
		}
	}
}

func TestRandomDegreeDrawsFromPresent(t *testing.T) {
	it, st, ch, cfg, rng := testRig("?", "CM")
	seen := map[int]int{}
	for i := 0; i < 600; i++ {
		res := it.Step(&st, &ch, cfg, rng)
		if res.NoteOn == NoNote {
			t.Fatalf("random step rested against a full triad")
		}
		seen[res.NoteOn]++
	}
	for _, note := range []int{48, 52, 55} {
		if seen[note] < 100 {
			t.Errorf("note %d drawn %d times out of 600, suspiciously few", note, seen[note])
		}
	}
	if len(seen) != 3 {
		t.Errorf("random notes = %v, want exactly the triad", seen)
	}
}

func TestRandomUpdatesLastDegree(t *testing.T) {
	it, st, ch, cfg, rng := testRig("?", "CM")
	it.Step(&st, &ch, cfg, rng)
	repeatIt := New("\"")
	res := repeatIt.Step(&st, &ch, cfg, rng)
	wantByDegree := map[int]int{0: 48, 1: 52, 2: 55}
	if res.NoteOn != wantByDegree[st.LastDegree] {
		t.Errorf("repeat after random = %d, LastDegree %d", res.NoteOn, st.LastDegree)
	}
}

func TestPrefixOnlyPatternRests(t *testing.T) {
	it, st, ch, cfg, rng := testRig("o+v5#", "CM")
	res := it.Step(&st, &ch, cfg, rng)
	if res.NoteOn != NoNote || res.Sustain {
		t.Errorf("prefix-only pattern should rest, got %+v", res)
	}
}

func TestInertCharactersSkipped(t *testing.T) {
	it, st, ch, cfg, rng := testRig(" 1 | 2 ", "CM")
	res := steps(it, &st, &ch, cfg, rng, 2)
	if res[0].NoteOn != 48 || res[1].NoteOn != 52 {
		t.Errorf("notes = %d, %d, want 48, 52", res[0].NoteOn, res[1].NoteOn)
	}
}

func TestRawAsPlayedResolution(t *testing.T) {
	it := New("1234")
	st := NewState(DefaultOctave, DefaultVelocity)
	ch := theory.ChordFromNotes([]int{67, 60, 64}, true)
	cfg := DefaultConfig()
	cfg.Mode = theory.ResolveRawAsPlayed
	rng := rand.New(rand.NewSource(7))
	want := []int{60, 64, 67, 60} // degree 4 wraps into the 3 held notes
	for i, w := range want {
		res := it.Step(&st, &ch, cfg, rng)
		if res.NoteOn != w {
			t.Fatalf("step %d: NoteOn = %d, want %d", i, res.NoteOn, w)
		}
	}
}

func TestRawAsPlayedOctaveShiftIsRelative(t *testing.T) {
	it := New("o+1")
	st := NewState(DefaultOctave, DefaultVelocity)
	ch := theory.ChordFromNotes([]int{60}, true)
	cfg := DefaultConfig()
	cfg.Mode = theory.ResolveRawAsPlayed
	rng := rand.New(rand.NewSource(7))
	res := it.Step(&st, &ch, cfg, rng)
	if res.NoteOn != 72 {
		t.Errorf("shifted as-played note = %d, want 72", res.NoteOn)
	}
}

func TestAbsentChordRests(t *testing.T) {
	it, st, ch, cfg, rng := testRig("123", "")
	for i := 0; i < 3; i++ {
		res := it.Step(&st, &ch, cfg, rng)
		if res.NoteOn != NoNote {
			t.Fatalf("empty chord produced note %d", res.NoteOn)
		}
	}
}

func TestNoteClampsToMIDIRange(t *testing.T) {
	// A flat on the lowest possible C would go to -1 without the clamp.
	it, st, ch, cfg, rng := testRig("O0b1", "CM")
	res := it.Step(&st, &ch, cfg, rng)
	if res.NoteOn != 0 {
		t.Errorf("note = %d, want clamped to 0", res.NoteOn)
	}
}
