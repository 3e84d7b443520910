package arpgen

import (
	"errors"
	"sync"

	intaudio "github.com/cbegin/arpgen-go/internal/audio"
	intsynth "github.com/cbegin/arpgen-go/internal/synth"
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	synthParams intsynth.Params
	sampleTap   func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{synthParams: intsynth.DefaultParams()}
}

// WithSynthParams overrides the audition synth voice parameters.
func WithSynthParams(params intsynth.Params) PlayerOption {
	return func(cfg *playerConfig) { cfg.synthParams = params }
}

// WithSampleTap installs a callback invoked with each generated stereo
// buffer. The callback runs on the audio thread; keep work brief and
// non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) { cfg.sampleTap = tap }
}

// Player auditions an Arpeggiator through the built-in synth and the
// system audio device. It owns the arpeggiator while playing: use
// Update for configuration changes so they hand off safely to the audio
// callback.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	cfg        playerConfig
	baseGain   float64
	volume     float64
	stream     *arpStream
	audio      *intaudio.Player
}

// arpStream renders arpeggiator events through the synth engine. The
// mutex serializes the audio callback against Update, implementing the
// single-writer handoff the core requires.
type arpStream struct {
	mu     sync.Mutex
	arp    *Arpeggiator
	engine *intsynth.Engine
	active map[uint8]int
	tap    func([]float32)
}

func (s *arpStream) Process(dst []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(dst) / 2
	events := s.arp.ProcessBlock(frames)
	ei := 0
	for f := 0; f < frames; f++ {
		for ei < len(events) && events[ei].Offset <= f {
			s.dispatch(events[ei])
			ei++
		}
		l, r := s.engine.RenderFrame()
		dst[f*2] = l
		dst[f*2+1] = r
	}
	if s.tap != nil {
		s.tap(dst)
	}
}

func (s *arpStream) dispatch(ev Event) {
	if ev.On {
		if id, ok := s.active[ev.Key]; ok {
			s.engine.NoteOff(id)
		}
		s.active[ev.Key] = s.engine.NoteOn(int(ev.Key), int(ev.Velocity))
		return
	}
	if id, ok := s.active[ev.Key]; ok {
		s.engine.NoteOff(id)
		delete(s.active, ev.Key)
	}
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{
		sampleRate: sampleRate,
		cfg:        cfg,
		baseGain:   cfg.synthParams.MasterGain,
		volume:     1,
	}, nil
}

// Play starts streaming the arpeggiator. The synth engine is recreated on
// every Play so voice and envelope state never leaks between runs.
func (p *Player) Play(a *Arpeggiator) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	a.Prepare(float64(p.sampleRate))
	engine := intsynth.New(p.sampleRate, p.cfg.synthParams)
	engine.SetMasterGain(p.baseGain * p.volume)
	stream := &arpStream{
		arp:    a,
		engine: engine,
		active: make(map[uint8]int),
		tap:    p.cfg.sampleTap,
	}
	backend, err := intaudio.NewPlayer(p.sampleRate, stream)
	if err != nil {
		return err
	}
	if p.audio != nil {
		_ = p.audio.Stop()
	}
	p.stream = stream
	p.audio = backend
	p.audio.Play()
	return nil
}

// Update applies a configuration change to the playing arpeggiator under
// the audio-callback lock, so it takes effect on the next resolved step
// without racing block processing.
func (p *Player) Update(fn func(*Arpeggiator)) {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()
	if stream == nil {
		return
	}
	stream.mu.Lock()
	fn(stream.arp)
	stream.mu.Unlock()
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	p.stream = nil
	return err
}

// SetMasterVolume sets the runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	if p.stream != nil {
		p.stream.engine.SetMasterGain(p.baseGain * p.volume)
	}
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// PlaybackPosition returns the current output position of the audio
// driver in samples, i.e. what the listener actually hears right now.
// Returns 0 if not playing.
func (p *Player) PlaybackPosition() int64 {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return int64(a.Position().Seconds() * float64(p.sampleRate))
}
