// Package arpgen generates deterministic, sample-accurately timed MIDI
// note events from a held chord and a compact textual pattern, phase-locked
// to a host's musical transport.
package arpgen

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/cbegin/arpgen-go/internal/pattern"
	"github.com/cbegin/arpgen-go/internal/theory"
)

// ResolutionMode selects how pattern degrees resolve against the active
// chord.
type ResolutionMode int

const (
	// ModeDegreesFolded resolves degrees through the chord's 7-slot
	// harmonic skeleton.
	ModeDegreesFolded ResolutionMode = iota
	// ModeRawAsPlayed resolves degrees through the literal held notes,
	// octaves and duplicates preserved.
	ModeRawAsPlayed
	// ModeScaleWalk resolves degrees through consecutive scale notes.
	ModeScaleWalk
)

func (m ResolutionMode) theory() theory.ResolutionMode {
	switch m {
	case ModeRawAsPlayed:
		return theory.ResolveRawAsPlayed
	case ModeScaleWalk:
		return theory.ResolveScaleWalk
	default:
		return theory.ResolveDegreesFolded
	}
}

// ParseResolutionMode resolves "folded", "asplayed" or "scalewalk".
func ParseResolutionMode(s string) (ResolutionMode, error) {
	switch s {
	case "folded", "":
		return ModeDegreesFolded, nil
	case "asplayed":
		return ModeRawAsPlayed, nil
	case "scalewalk":
		return ModeScaleWalk, nil
	}
	return 0, fmt.Errorf("invalid resolution mode %q (expected folded|asplayed|scalewalk)", s)
}

// AbsentDegreePolicy controls what an absent chord degree resolves to.
type AbsentDegreePolicy int

const (
	// AbsentOff turns an absent degree into a rest.
	AbsentOff AbsentDegreePolicy = iota
	// AbsentNext substitutes the next present degree, wrapping.
	AbsentNext
	// AbsentPrevious substitutes the previous present degree, wrapping.
	AbsentPrevious
)

func (p AbsentDegreePolicy) theory() theory.AbsentDegreePolicy {
	switch p {
	case AbsentOff:
		return theory.AbsentOff
	case AbsentPrevious:
		return theory.AbsentPrevious
	default:
		return theory.AbsentNext
	}
}

// ParseAbsentDegreePolicy resolves "off", "next" or "previous".
func ParseAbsentDegreePolicy(s string) (AbsentDegreePolicy, error) {
	switch s {
	case "off":
		return AbsentOff, nil
	case "next", "":
		return AbsentNext, nil
	case "previous":
		return AbsentPrevious, nil
	}
	return 0, fmt.Errorf("invalid absent-degree policy %q (expected off|next|previous)", s)
}

// Arpeggiator is one arpeggiator voice: a pattern interpreter driven by a
// fractional-sample step clock. All methods must be called from a single
// goroutine (the audio callback); configuration changes from elsewhere
// must be handed off by the caller.
type Arpeggiator struct {
	interp       *pattern.Interpreter
	state        pattern.State
	chord        theory.Chord
	cfg          pattern.Config
	baseVelocity int
	rng          *rand.Rand

	sampleRate           float64
	tempoBPM             float64
	div                  Subdivision
	samplesPerStep       float64
	samplesUntilNextStep float64

	channel     uint8
	lastChannel uint8
}

// Option configures a new Arpeggiator.
type Option func(*Arpeggiator)

// WithRand injects the random source used by the '?' pattern command.
func WithRand(rng *rand.Rand) Option {
	return func(a *Arpeggiator) { a.rng = rng }
}

func WithPattern(p string) Option {
	return func(a *Arpeggiator) { a.SetPattern(p) }
}

func WithChordName(name string) Option {
	return func(a *Arpeggiator) { a.SetChordName(name) }
}

func WithTempo(bpm float64) Option {
	return func(a *Arpeggiator) { a.SetTempo(bpm) }
}

func WithSubdivision(d Subdivision) Option {
	return func(a *Arpeggiator) { a.SetSubdivision(d) }
}

func WithOctave(octave int) Option {
	return func(a *Arpeggiator) { a.SetOctave(octave) }
}

func WithChannel(channel uint8) Option {
	return func(a *Arpeggiator) { a.SetChannel(channel) }
}

// New returns a voice with an empty pattern and chord, 120 BPM, 1/16
// subdivision, octave 4 and velocity 96. It emits nothing until Prepare
// and the pattern/chord setters have been called.
func New(opts ...Option) *Arpeggiator {
	a := &Arpeggiator{
		interp:       pattern.New(""),
		chord:        theory.ParseChord(""),
		cfg:          pattern.DefaultConfig(),
		baseVelocity: pattern.DefaultVelocity,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		tempoBPM:     120,
		div:          Div1_16,
	}
	a.state = pattern.NewState(a.cfg.BaseOctave, a.baseVelocity)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Prepare establishes the timing base. Must be called before block
// processing.
func (a *Arpeggiator) Prepare(sampleRate float64) {
	a.sampleRate = sampleRate
	a.updateSamplesPerStep()
}

// SetPattern replaces the pattern text and defensively rewinds the cursor
// and degree memory; the change is heard on the next resolved step.
func (a *Arpeggiator) SetPattern(p string) {
	a.interp.SetPattern(p)
	a.state.Cursor = 0
	a.state.LastDegree = 0
}

func (a *Arpeggiator) Pattern() string { return a.interp.Pattern() }

// StepCount returns the number of musical steps in the current pattern.
func (a *Arpeggiator) StepCount() int { return a.interp.StepCount() }

// SetChordName parses a chord name ("Am", "G7", "F#M7") into the active
// chord. Unrecognized names yield an all-absent chord that produces rests.
func (a *Arpeggiator) SetChordName(name string) {
	a.setChord(theory.ParseChord(name))
}

// SetChordNotes sets the active chord from externally held MIDI notes,
// folded onto degrees or stored literally as played.
func (a *Arpeggiator) SetChordNotes(notes []int, asPlayed bool) {
	a.setChord(theory.ChordFromNotes(notes, asPlayed))
}

// SetScaleChord derives the active chord from a scale degree. rootName is
// a note name, scaleName one of the built-in scale types, and stacked
// selects diatonic thirds over consecutive scale notes.
func (a *Arpeggiator) SetScaleChord(rootName, scaleName string, degree int, stacked bool) error {
	root, ok := theory.SemitoneClass(rootName)
	if !ok {
		return fmt.Errorf("unknown note name %q", rootName)
	}
	typ, ok := theory.ScaleTypeByName(scaleName)
	if !ok {
		return fmt.Errorf("unknown scale type %q", scaleName)
	}
	a.setChord(theory.ChordFromScale(theory.NewScale(root, typ), degree, stacked))
	return nil
}

func (a *Arpeggiator) setChord(c theory.Chord) {
	a.chord = c
	a.state.Cursor = 0
	a.state.LastDegree = 0
}

// SetTempo sets the tempo in BPM. A non-positive tempo idles the clock.
func (a *Arpeggiator) SetTempo(bpm float64) {
	a.tempoBPM = bpm
	a.updateSamplesPerStep()
}

func (a *Arpeggiator) Tempo() float64 { return a.tempoBPM }

func (a *Arpeggiator) SetSubdivision(d Subdivision) {
	a.div = d
	a.updateSamplesPerStep()
}

func (a *Arpeggiator) Subdivision() Subdivision { return a.div }

// SetOctave sets the base octave (clamped to 0-7) and moves the current
// octave to it.
func (a *Arpeggiator) SetOctave(octave int) {
	if octave < pattern.MinOctave {
		octave = pattern.MinOctave
	}
	if octave > pattern.MaxOctave {
		octave = pattern.MaxOctave
	}
	a.cfg.BaseOctave = octave
	a.state.Octave = octave
}

// SetVelocity sets the global velocity (clamped to 16-127), also used as
// the default restored by Reset.
func (a *Arpeggiator) SetVelocity(velocity int) {
	if velocity < pattern.MinVelocity {
		velocity = pattern.MinVelocity
	}
	if velocity > pattern.MaxVelocity {
		velocity = pattern.MaxVelocity
	}
	a.baseVelocity = velocity
	a.state.Velocity = velocity
}

func (a *Arpeggiator) SetResolutionMode(m ResolutionMode) {
	a.cfg.Mode = m.theory()
}

func (a *Arpeggiator) SetAbsentDegreePolicy(p AbsentDegreePolicy) {
	a.cfg.AbsentPolicy = p.theory()
}

func (a *Arpeggiator) SetChannel(channel uint8) {
	a.channel = channel & 0x0f
}

// SamplesPerStep returns the current step duration in samples, 0 while
// the clock is idle.
func (a *Arpeggiator) SamplesPerStep() float64 { return a.samplesPerStep }

func (a *Arpeggiator) updateSamplesPerStep() {
	if a.sampleRate > 0 && a.tempoBPM > 0 {
		a.samplesPerStep = a.sampleRate * (60.0 / a.tempoBPM) / a.div.Divisor()
	} else {
		a.samplesPerStep = 0
	}
}

// ProcessBlock advances the step clock across one audio block and returns
// the events due within it, stamped with sample offsets relative to the
// block start. Offsets are non-decreasing. With no pattern, sample rate or
// tempo the voice idles and returns nothing.
func (a *Arpeggiator) ProcessBlock(numSamples int) []Event {
	if a.sampleRate <= 0 || a.samplesPerStep <= 0 || a.interp.StepCount() == 0 {
		return nil
	}
	var events []Event
	elapsed := 0
	for elapsed < numSamples {
		if a.samplesUntilNextStep <= 0 {
			res := a.interp.Step(&a.state, &a.chord, a.cfg, a.rng)
			if !res.Sustain {
				if res.NoteOff != pattern.NoNote {
					events = append(events, noteOffEvent(elapsed, a.lastChannel, res.NoteOff))
				}
				if res.NoteOn != pattern.NoNote {
					events = append(events, noteOnEvent(elapsed, a.channel, res.NoteOn, res.Velocity))
					a.lastChannel = a.channel
				}
			}
			// Re-arm by repeated addition so blocks longer than a step, or
			// degenerate step durations, neither stall nor double-fire.
			for a.samplesUntilNextStep <= 0 {
				a.samplesUntilNextStep += a.samplesPerStep
			}
		}
		advance := numSamples - elapsed
		if c := int(math.Ceil(a.samplesUntilNextStep)); c < advance {
			advance = c
		}
		if advance < 1 {
			advance = 1
		}
		elapsed += advance
		a.samplesUntilNextStep -= float64(advance)
	}
	return events
}

// SyncToHostPosition re-phases the step clock to the host transport
// position, given in quarter notes (PPQ). The pattern cursor jumps to the
// step at the next boundary at or after the position and the countdown is
// set to the sample distance to that boundary. Performance state (octave
// and velocity memory) survives the resync.
func (a *Arpeggiator) SyncToHostPosition(ppq float64) {
	steps := a.interp.StepCount()
	if steps == 0 || a.sampleRate <= 0 || a.tempoBPM <= 0 {
		return
	}
	div := a.div.Divisor()
	posSteps := ppq * div
	next := math.Ceil(posSteps)
	idx := int(next) % steps
	if idx < 0 {
		idx += steps
	}
	a.state.Cursor = a.interp.StepOffset(idx)
	samplesPerQuarter := a.sampleRate * 60.0 / a.tempoBPM
	a.samplesUntilNextStep = (next - posSteps) / div * samplesPerQuarter
}

// Reset returns the voice to its initial performance state: any sounding
// note is turned off (the returned event must be forwarded), the octave
// and velocity return to their bases, and the cursor, degree memory and
// step countdown rewind. Follow with SyncToHostPosition when transport
// position is available.
func (a *Arpeggiator) Reset() []Event {
	events := a.pendingNoteOff()
	a.state.Octave = a.cfg.BaseOctave
	a.state.Velocity = a.baseVelocity
	a.rewind()
	a.samplesUntilNextStep = 0
	return events
}

// TurnOff is the lighter variant of Reset: it stops the sounding note and
// rewinds the cursor, degree memory and octave, but leaves the global
// velocity and the step countdown untouched.
func (a *Arpeggiator) TurnOff() []Event {
	events := a.pendingNoteOff()
	a.state.Octave = a.cfg.BaseOctave
	a.rewind()
	return events
}

func (a *Arpeggiator) rewind() {
	a.state.Cursor = 0
	a.state.LastDegree = 0
	a.state.OneShotOctave = pattern.NoNote
	a.state.OneShotVelocity = 0
	a.state.Accent = 0
}

func (a *Arpeggiator) pendingNoteOff() []Event {
	if a.state.LastNote == pattern.NoNote {
		return nil
	}
	ev := noteOffEvent(0, a.lastChannel, a.state.LastNote)
	a.state.LastNote = pattern.NoNote
	return []Event{ev}
}
