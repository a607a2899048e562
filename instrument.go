package drumkit

import (
	"io"
	"log/slog"
	"math"
	"sync/atomic"
)

// Instrument is a mixer channel of a drum kit: up to MaxLayers sample layers
// sharing one envelope, filter and mix settings.
//
// Two actors touch an instrument: a control side that loads and edits it, and
// a render path that reads it once per audio block while holding its render
// lock. Methods that replace layers or the whole state take that lock as a
// parameter; a nil lock means the instrument is not attached to a render path.
// Individual setters do not lock: callers editing an attached instrument hold
// the render lock around them. Peaks and the queued counter are written by the
// render path and are safe to access without the lock.
type Instrument struct {
	id   int
	name string
	adsr ADSR

	gain   float32
	volume float32
	panL   float32
	panR   float32
	peakL  atomic.Uint32 // float32 bits
	peakR  atomic.Uint32

	filterActive      bool
	filterCutoff      float32
	filterResonance   float32
	randomPitchFactor float32

	midiOutNote    int
	midiOutChannel int
	stopNotes      bool

	active    bool
	soloed    bool
	muted     bool
	muteGroup int
	queued    atomic.Int32

	fxLevels [MaxFX]float32
	layers   [MaxLayers]*Layer

	log *slog.Logger
}

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// NewInstrument returns an instrument with no layers and every other
// parameter at its default.
func NewInstrument(id int, name string, adsr ADSR) *Instrument {
	return &Instrument{
		id:             id,
		name:           name,
		adsr:           adsr,
		gain:           1,
		volume:         1,
		panL:           1,
		panR:           1,
		filterCutoff:   1,
		midiOutNote:    MIDIMiddleC,
		midiOutChannel: -1,
		active:         true,
		muteGroup:      -1,
	}
}

// EmptyInstrument returns the placeholder instrument, carrying
// EmptyInstrumentID.
func EmptyInstrument() *Instrument {
	return NewInstrument(EmptyInstrumentID, "Empty Instrument", DefaultADSR())
}

// Copy returns a deep copy of the instrument. Layers are copied with
// Layer.Copy; the copies share the sample payloads of the originals without
// holding references to them, so unloading the copy leaves the loader alone.
// Use CopyWith for a copy that owns its payloads.
func (i *Instrument) Copy() *Instrument {
	ret := &Instrument{
		id:                i.id,
		name:              i.name,
		adsr:              i.adsr,
		gain:              i.gain,
		volume:            i.volume,
		panL:              i.panL,
		panR:              i.panR,
		filterActive:      i.filterActive,
		filterCutoff:      i.filterCutoff,
		filterResonance:   i.filterResonance,
		randomPitchFactor: i.randomPitchFactor,
		midiOutNote:       i.midiOutNote,
		midiOutChannel:    i.midiOutChannel,
		stopNotes:         i.stopNotes,
		active:            i.active,
		soloed:            i.soloed,
		muted:             i.muted,
		muteGroup:         i.muteGroup,
		fxLevels:          i.fxLevels,
		log:               i.log,
	}
	ret.peakL.Store(i.peakL.Load())
	ret.peakR.Store(i.peakR.Load())
	ret.queued.Store(i.queued.Load())
	for idx, l := range i.layers {
		if l != nil {
			c := l.Copy()
			c.install()
			ret.layers[idx] = c
		}
	}
	return ret
}

// CopyWith returns a deep copy of the instrument whose layers hold their own
// references to the sample payloads, taken from samples. A layer whose
// reference cannot be taken is left out of the copy.
func (i *Instrument) CopyWith(samples SampleLoader) *Instrument {
	ret := i.Copy()
	for idx, l := range i.layers {
		if l == nil {
			continue
		}
		c, err := l.Retain(samples)
		if err != nil {
			i.logger().Error("could not copy layer, leaving the slot empty", "instrument", i.name, "slot", idx, "err", err)
		} else {
			c.install()
		}
		ret.layers[idx] = c
	}
	return ret
}

// SetLogger sets where the instrument reports rejected values and degraded
// loads. nil discards the reports.
func (i *Instrument) SetLogger(log *slog.Logger) {
	i.log = log
}

func (i *Instrument) logger() *slog.Logger {
	if i.log == nil {
		return discardLog
	}
	return i.log
}

func (i *Instrument) ID() int                    { return i.id }
func (i *Instrument) Name() string               { return i.name }
func (i *Instrument) ADSR() ADSR                 { return i.adsr }
func (i *Instrument) Gain() float32              { return i.gain }
func (i *Instrument) Volume() float32            { return i.volume }
func (i *Instrument) PanL() float32              { return i.panL }
func (i *Instrument) PanR() float32              { return i.panR }
func (i *Instrument) FilterActive() bool         { return i.filterActive }
func (i *Instrument) FilterCutoff() float32      { return i.filterCutoff }
func (i *Instrument) FilterResonance() float32   { return i.filterResonance }
func (i *Instrument) RandomPitchFactor() float32 { return i.randomPitchFactor }
func (i *Instrument) MIDIOutNote() int           { return i.midiOutNote }
func (i *Instrument) MIDIOutChannel() int        { return i.midiOutChannel }
func (i *Instrument) StopNotes() bool            { return i.stopNotes }
func (i *Instrument) Active() bool               { return i.active }
func (i *Instrument) Soloed() bool               { return i.soloed }
func (i *Instrument) Muted() bool                { return i.muted }
func (i *Instrument) MuteGroup() int             { return i.muteGroup }

// FXLevel returns the send level of effect slot idx, or 0 for a slot out of
// range.
func (i *Instrument) FXLevel(idx int) float32 {
	if idx < 0 || idx >= MaxFX {
		return 0
	}
	return i.fxLevels[idx]
}

// SetID gives the placeholder instrument an id. Once an instrument has an id
// other than EmptyInstrumentID, the id can no longer be changed.
func (i *Instrument) SetID(id int) (ok bool) {
	if i.id != EmptyInstrumentID && id != i.id {
		i.logger().Error("instrument id cannot be changed", "id", i.id, "new", id)
		return false
	}
	i.id = id
	return true
}

func (i *Instrument) SetName(name string) { i.name = name }

// SetADSR replaces the envelope. An envelope with negative times or a
// sustain level outside [0,1] is rejected.
func (i *Instrument) SetADSR(a ADSR) (ok bool) {
	if !a.Valid() {
		i.logger().Error("envelope out of bounds", "instrument", i.name, "adsr", a)
		return false
	}
	i.adsr = a
	return true
}

func (i *Instrument) SetGain(v float32) (ok bool) {
	return i.setNonNegative(&i.gain, "gain", v)
}

func (i *Instrument) SetVolume(v float32) (ok bool) {
	return i.setNonNegative(&i.volume, "volume", v)
}

func (i *Instrument) SetPanL(v float32) (ok bool) {
	return i.setNonNegative(&i.panL, "pan_L", v)
}

func (i *Instrument) SetPanR(v float32) (ok bool) {
	return i.setNonNegative(&i.panR, "pan_R", v)
}

func (i *Instrument) SetRandomPitchFactor(v float32) (ok bool) {
	return i.setNonNegative(&i.randomPitchFactor, "randomPitchFactor", v)
}

func (i *Instrument) SetFilterActive(active bool) { i.filterActive = active }

func (i *Instrument) SetFilterCutoff(v float32) (ok bool) {
	return i.setUnit(&i.filterCutoff, "filterCutoff", v)
}

func (i *Instrument) SetFilterResonance(v float32) (ok bool) {
	return i.setUnit(&i.filterResonance, "filterResonance", v)
}

// SetMIDIOutNote sets the note sent when the instrument is triggered. Notes
// outside [MIDINoteMin, MIDINoteMax] are rejected.
func (i *Instrument) SetMIDIOutNote(note int) (ok bool) {
	if note < MIDINoteMin || note > MIDINoteMax {
		i.logger().Error("midi out note out of bounds", "instrument", i.name, "note", note)
		return false
	}
	i.midiOutNote = note
	return true
}

// SetMIDIOutChannel sets the channel MIDI out messages are sent on, -1 for
// none. Channels outside [MIDIChannelMin, MIDIChannelMax] are rejected.
func (i *Instrument) SetMIDIOutChannel(channel int) (ok bool) {
	if channel < MIDIChannelMin || channel > MIDIChannelMax {
		i.logger().Error("midi out channel out of bounds", "instrument", i.name, "channel", channel)
		return false
	}
	i.midiOutChannel = channel
	return true
}

func (i *Instrument) SetStopNotes(stop bool) { i.stopNotes = stop }
func (i *Instrument) SetActive(active bool)  { i.active = active }
func (i *Instrument) SetSoloed(soloed bool)  { i.soloed = soloed }
func (i *Instrument) SetMuted(muted bool)    { i.muted = muted }

// SetMuteGroup puts the instrument in a mute group, -1 for none.
func (i *Instrument) SetMuteGroup(group int) (ok bool) {
	if group < -1 {
		i.logger().Error("mute group out of bounds", "instrument", i.name, "group", group)
		return false
	}
	i.muteGroup = group
	return true
}

// SetFXLevel sets the send level of effect slot idx to v in [0,1].
func (i *Instrument) SetFXLevel(idx int, v float32) (ok bool) {
	if idx < 0 || idx >= MaxFX {
		i.logger().Error("fx slot out of bounds", "instrument", i.name, "slot", idx)
		return false
	}
	return i.setUnit(&i.fxLevels[idx], "fxLevel", v)
}

func (i *Instrument) setNonNegative(field *float32, name string, v float32) bool {
	if v < 0 || math.IsNaN(float64(v)) {
		i.logger().Error("value should not be negative", "instrument", i.name, "field", name, "value", v)
		return false
	}
	*field = v
	return true
}

func (i *Instrument) setUnit(field *float32, name string, v float32) bool {
	if v < 0 || v > 1 || math.IsNaN(float64(v)) {
		i.logger().Error("value should be within [0,1]", "instrument", i.name, "field", name, "value", v)
		return false
	}
	*field = v
	return true
}

// Peaks returns the latest output levels written by the render path.
func (i *Instrument) Peaks() (left, right float32) {
	return math.Float32frombits(i.peakL.Load()), math.Float32frombits(i.peakR.Load())
}

func (i *Instrument) SetPeaks(left, right float32) {
	i.peakL.Store(math.Float32bits(left))
	i.peakR.Store(math.Float32bits(right))
}

// Enqueue marks the instrument as having a note waiting in the trigger queue.
func (i *Instrument) Enqueue() { i.queued.Add(1) }

// Dequeue removes one mark set by Enqueue.
func (i *Instrument) Dequeue() {
	for {
		q := i.queued.Load()
		if q <= 0 || i.queued.CompareAndSwap(q, q-1) {
			return
		}
	}
}

func (i *Instrument) IsQueued() bool { return i.queued.Load() > 0 }

// Layer returns the layer in slot idx, or nil for an empty slot or an index
// out of range.
func (i *Instrument) Layer(idx int) *Layer {
	if idx < 0 || idx >= MaxLayers {
		return nil
	}
	return i.layers[idx]
}

// LayerCount returns the number of occupied slots.
func (i *Instrument) LayerCount() int {
	n := 0
	for _, l := range i.layers {
		if l != nil {
			n++
		}
	}
	return n
}
