package arpgen

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"

	intsynth "github.com/cbegin/arpgen-go/internal/synth"
)

// renderBlockSize is the block size offline renders process with; results
// are identical for any choice, this one just keeps allocations small.
const renderBlockSize = 512

// RenderEvents runs the arpeggiator for a duration and collects every
// event it produces, with offsets made absolute from the start of the
// render. The arpeggiator must have been prepared.
func RenderEvents(a *Arpeggiator, sampleRate int, seconds float64) []Event {
	a.Prepare(float64(sampleRate))
	total := int(float64(sampleRate) * seconds)
	var out []Event
	for pos := 0; pos < total; pos += renderBlockSize {
		n := renderBlockSize
		if pos+n > total {
			n = total - pos
		}
		for _, ev := range a.ProcessBlock(n) {
			ev.Offset += pos
			out = append(out, ev)
		}
	}
	return out
}

// RenderSamples renders the arpeggiator through the built-in synth into
// interleaved stereo float32 samples.
func RenderSamples(a *Arpeggiator, sampleRate int, seconds float64) []float32 {
	a.Prepare(float64(sampleRate))
	engine := intsynth.New(sampleRate, intsynth.DefaultParams())
	stream := &arpStream{arp: a, engine: engine, active: make(map[uint8]int)}
	frames := int(float64(sampleRate) * seconds)
	out := make([]float32, frames*2)
	for pos := 0; pos < frames; pos += renderBlockSize {
		n := renderBlockSize
		if pos+n > frames {
			n = frames - pos
		}
		stream.Process(out[pos*2 : (pos+n)*2])
	}
	return out
}

// RenderSMF renders the arpeggiator's events for a duration into a
// Standard MIDI File (format 0, metric ticks) and returns its bytes.
func RenderSMF(a *Arpeggiator, sampleRate int, seconds float64) ([]byte, error) {
	if a.Tempo() <= 0 {
		return nil, errors.New("tempo must be positive")
	}
	events := RenderEvents(a, sampleRate, seconds)

	const tpq = 960
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(tpq)

	// Samples to ticks at the fixed tempo of the render.
	ticksPerSample := a.Tempo() / 60.0 * tpq / float64(sampleRate)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(a.Tempo()))
	prev := uint32(0)
	for _, ev := range events {
		tick := uint32(math.Round(float64(ev.Offset) * ticksPerSample))
		tr.Add(tick-prev, ev.Message())
		prev = tick
	}
	tr.Close(0)
	if err := s.Add(tr); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeWAVFloat32LE packs samples into a float32 PCM WAV file.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
