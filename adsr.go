package drumkit

// ADSR is the amplitude envelope of an instrument. Attack, Decay and Release
// are in milliseconds, Sustain is a level in [0,1].
type ADSR struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

// DefaultADSR returns the envelope new instruments start with.
func DefaultADSR() ADSR {
	return ADSR{Attack: 0, Decay: 0, Sustain: 1, Release: 1000}
}

// Valid reports whether all the times are non-negative and the sustain level
// is within [0,1].
func (a ADSR) Valid() bool {
	return a.Attack >= 0 && a.Decay >= 0 && a.Release >= 0 && a.Sustain >= 0 && a.Sustain <= 1
}
