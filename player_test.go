package arpgen

import (
	"math/rand"
	"testing"

	intsynth "github.com/cbegin/arpgen-go/internal/synth"
)

func TestNewPlayerValidation(t *testing.T) {
	if _, err := NewPlayer(0); err == nil {
		t.Fatal("expected an error for zero sample rate")
	}
	if _, err := NewPlayer(-1); err == nil {
		t.Fatal("expected an error for negative sample rate")
	}
	p, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	if p.MasterVolume() != 1 {
		t.Errorf("initial volume = %f, want 1", p.MasterVolume())
	}
}

func TestPlayerMasterVolumeRuntimeAPI(t *testing.T) {
	p, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	p.SetMasterVolume(0.5)
	if got := p.MasterVolume(); got != 0.5 {
		t.Errorf("volume = %f, want 0.5", got)
	}
	p.SetMasterVolume(-2)
	if got := p.MasterVolume(); got != 0 {
		t.Errorf("negative volume clamped to %f, want 0", got)
	}
}

func TestPlayerIdleControlsAreNoOps(t *testing.T) {
	p, err := NewPlayer(48000)
	if err != nil {
		t.Fatal(err)
	}
	p.Pause()
	p.Resume()
	p.Update(func(*Arpeggiator) { t.Fatal("update ran with no stream") })
	if err := p.Stop(); err != nil {
		t.Errorf("Stop with nothing playing: %v", err)
	}
	if got := p.PlaybackPosition(); got != 0 {
		t.Errorf("idle position = %d, want 0", got)
	}
}

func TestArpStreamDispatch(t *testing.T) {
	a := New(
		WithRand(rand.New(rand.NewSource(9))),
		WithPattern("1"),
		WithChordName("CM"),
		WithTempo(120),
		WithSubdivision(Div1_4),
	)
	a.Prepare(48000)
	engine := intsynth.New(48000, intsynth.DefaultParams())
	stream := &arpStream{arp: a, engine: engine, active: make(map[uint8]int)}

	buf := make([]float32, 1024*2)
	stream.Process(buf)
	if engine.ActiveVoiceCount() != 1 {
		t.Fatalf("active voices = %d, want 1", engine.ActiveVoiceCount())
	}
	nonzero := false
	for _, s := range buf {
		if s != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Fatal("stream rendered silence for a sounding note")
	}
}

func TestArpStreamRetriggerStealsVoice(t *testing.T) {
	// The same key retriggered on every step releases the old voice
	// instead of stacking a duplicate mapping.
	a := New(
		WithRand(rand.New(rand.NewSource(9))),
		WithPattern("1"),
		WithChordName("CM"),
		WithTempo(6000), // 100 steps per second on the 1/4 grid
		WithSubdivision(Div1_4),
	)
	a.Prepare(48000)
	engine := intsynth.New(48000, intsynth.DefaultParams())
	stream := &arpStream{arp: a, engine: engine, active: make(map[uint8]int)}
	buf := make([]float32, 48000*2)
	stream.Process(buf)
	if len(stream.active) != 1 {
		t.Errorf("active map size = %d, want 1", len(stream.active))
	}
}

func TestPlayerSampleTap(t *testing.T) {
	tapped := 0
	p, err := NewPlayer(48000, WithSampleTap(func(buf []float32) { tapped += len(buf) }))
	if err != nil {
		t.Fatal(err)
	}
	if p.cfg.sampleTap == nil {
		t.Fatal("tap not installed")
	}
	stream := &arpStream{
		arp:    New(WithPattern("1"), WithChordName("CM")),
		engine: intsynth.New(48000, intsynth.DefaultParams()),
		active: make(map[uint8]int),
		tap:    p.cfg.sampleTap,
	}
	stream.arp.Prepare(48000)
	stream.Process(make([]float32, 256))
	if tapped != 256 {
		t.Errorf("tap saw %d samples, want 256", tapped)
	}
}
