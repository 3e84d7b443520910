package arpgen

import (
	"gitlab.com/gomidi/midi/v2"
)

// Event is one timestamped MIDI note event. Offset is in samples relative
// to the start of the block that produced it.
type Event struct {
	Offset   int
	Channel  uint8
	Key      uint8
	Velocity uint8
	On       bool
}

// Message renders the event as a MIDI wire message.
func (e Event) Message() midi.Message {
	if e.On {
		return midi.NoteOn(e.Channel, e.Key, e.Velocity)
	}
	return midi.NoteOff(e.Channel, e.Key)
}

func noteOnEvent(offset int, channel uint8, key, velocity int) Event {
	return Event{Offset: offset, Channel: channel, Key: uint8(key), Velocity: uint8(velocity), On: true}
}

func noteOffEvent(offset int, channel uint8, key int) Event {
	return Event{Offset: offset, Channel: channel, Key: uint8(key)}
}
