package drumkit

import (
	"math"

	"gitlab.com/gomidi/midi/v2"
)

// MIDINoteOn returns the note on message the instrument sends when triggered
// with velocity in [0,1]. It reports false when the instrument has no MIDI
// out channel.
func (i *Instrument) MIDINoteOn(velocity float32) (midi.Message, bool) {
	if i.midiOutChannel < 0 {
		return nil, false
	}
	if math.IsNaN(float64(velocity)) {
		velocity = 0
	}
	v := uint8(math.Round(float64(clamp(velocity, 0, 1)) * 127))
	return midi.NoteOn(uint8(i.midiOutChannel), uint8(i.midiOutNote), v), true
}

// MIDINoteOff returns the note off message the instrument sends when its
// note is stopped. It reports false when the instrument has no MIDI out
// channel or does not send note offs.
func (i *Instrument) MIDINoteOff() (midi.Message, bool) {
	if i.midiOutChannel < 0 || !i.stopNotes {
		return nil, false
	}
	return midi.NoteOff(uint8(i.midiOutChannel), uint8(i.midiOutNote)), true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
