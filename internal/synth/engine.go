// Package synth is a small polyphonic 2-operator FM engine used to
// audition arpeggiator output without a plugin host.
package synth

import (
	"math"
	"sync/atomic"
)

const twoPi = math.Pi * 2

type Params struct {
	Polyphony   int
	CarrierMul  float64
	ModMul      float64
	ModIndex    float64
	AttackSec   float64
	DecaySec    float64
	SustainLvl  float64
	ReleaseSec  float64
	MasterGain  float64
	VelocityAmp float64
}

func DefaultParams() Params {
	return Params{
		Polyphony:   16,
		CarrierMul:  1.0,
		ModMul:      2.0,
		ModIndex:    1.4,
		AttackSec:   0.004,
		DecaySec:    0.1,
		SustainLvl:  0.7,
		ReleaseSec:  0.25,
		MasterGain:  0.4,
		VelocityAmp: 0.8,
	}
}

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

type voice struct {
	active       bool
	id           int
	freq         float64
	velocity     float64
	carrierPhase float64
	modPhase     float64
	env          float64
	envState     envState
}

// Engine renders mixed stereo frames for all active voices. SetMasterGain
// is safe to call from outside the render goroutine; everything else is
// audio-thread-only.
type Engine struct {
	sampleRate float64
	params     Params
	voices     []voice
	nextID     int
	masterGain atomic.Uint64
}

func New(sampleRate int, params Params) *Engine {
	if params.Polyphony <= 0 {
		params.Polyphony = 16
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		voices:     make([]voice, params.Polyphony),
	}
	e.masterGain.Store(math.Float64bits(params.MasterGain))
	return e
}

// NoteOn starts a voice for a MIDI note and returns its id for NoteOff.
// The quietest releasing voice is stolen when the pool is full.
func (e *Engine) NoteOn(note, velocity int) int {
	vi := e.allocate()
	v := &e.voices[vi]
	e.nextID++
	*v = voice{
		active:   true,
		id:       e.nextID,
		freq:     440.0 * math.Pow(2, (float64(note)-69)/12.0),
		velocity: velScale(velocity, e.params.VelocityAmp),
		envState: envAttack,
	}
	return v.id
}

func (e *Engine) NoteOff(id int) {
	for i := range e.voices {
		if e.voices[i].active && e.voices[i].id == id {
			e.voices[i].envState = envRelease
			return
		}
	}
}

// ActiveVoiceCount returns the number of voices still sounding, release
// tails included.
func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

func (e *Engine) SetMasterGain(gain float64) {
	e.masterGain.Store(math.Float64bits(gain))
}

// RenderFrame renders one stereo frame of all active voices.
func (e *Engine) RenderFrame() (float32, float32) {
	var sum float64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}
		e.advanceEnvelope(v)
		if !v.active {
			continue
		}
		modInc := twoPi * v.freq * e.params.ModMul / e.sampleRate
		carInc := twoPi * v.freq * e.params.CarrierMul / e.sampleRate
		v.modPhase += modInc
		if v.modPhase > twoPi {
			v.modPhase -= twoPi
		}
		v.carrierPhase += carInc
		if v.carrierPhase > twoPi {
			v.carrierPhase -= twoPi
		}
		mod := math.Sin(v.modPhase) * e.params.ModIndex * v.env
		sum += math.Sin(v.carrierPhase+mod) * v.env * v.velocity
	}
	gain := math.Float64frombits(e.masterGain.Load())
	out := float32(sum * gain)
	return out, out
}

func (e *Engine) advanceEnvelope(v *voice) {
	switch v.envState {
	case envAttack:
		v.env += 1.0 / (e.params.AttackSec * e.sampleRate)
		if v.env >= 1 {
			v.env = 1
			v.envState = envDecay
		}
	case envDecay:
		v.env -= (1 - e.params.SustainLvl) / (e.params.DecaySec * e.sampleRate)
		if v.env <= e.params.SustainLvl {
			v.env = e.params.SustainLvl
			v.envState = envSustain
		}
	case envSustain:
		// Holds until NoteOff.
	case envRelease:
		v.env -= e.params.SustainLvl / (e.params.ReleaseSec * e.sampleRate)
		if v.env <= 0 {
			v.env = 0
			v.envState = envOff
			v.active = false
		}
	}
}

func (e *Engine) allocate() int {
	quietest := 0
	level := math.MaxFloat64
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
		if e.voices[i].env < level {
			level = e.voices[i].env
			quietest = i
		}
	}
	return quietest
}

func velScale(velocity int, amp float64) float64 {
	if velocity < 0 {
		velocity = 0
	}
	if velocity > 127 {
		velocity = 127
	}
	v := float64(velocity) / 127.0
	return 1 - amp + amp*v
}
