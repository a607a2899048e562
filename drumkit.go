// Package drumkit models percussion instruments: mixer channels made of up to
// MaxLayers sample layers, sharing one envelope and filter, that can be
// replaced while a render path is reading them.
package drumkit

const (
	// MaxLayers is the number of layer slots of every instrument.
	MaxLayers = 16
	// MaxFX is the number of effect sends of every instrument.
	MaxFX = 4
	// EmptyInstrumentID is the id of the empty placeholder instrument. A
	// document carrying this id reads as no instrument at all.
	EmptyInstrumentID = -1

	MIDIMiddleC    = 60
	MIDINoteMin    = 0
	MIDINoteMax    = 127
	MIDIChannelMin = -1 // no channel
	MIDIChannelMax = 15
)
