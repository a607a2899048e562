package drumkit

import (
	"fmt"
	"math"
	"path/filepath"
	"sync/atomic"

	"github.com/vsariola/drumkit/doc"
)

type (
	// Layer binds one sample to a slot of an instrument, with its own gain,
	// pitch offset and the velocity and note ranges it answers to.
	//
	// A layer is fresh when created, installed when put in a slot and released
	// when its slot is cleared or replaced. A layer is installed in at most
	// one slot during its lifetime and released at most once.
	//
	// A layer whose sample came from a SampleLoader holds a reference to the
	// payload and gives it back to that loader when released.
	Layer struct {
		sample      *Sample
		gain        float32
		pitch       float32 // semitones
		minVelocity float32
		maxVelocity float32
		pitchRange  PitchRange

		owner SampleLoader
		state atomic.Int32
	}

	// PitchRange limits the MIDI notes a layer answers to. The zero value
	// accepts all notes.
	PitchRange struct {
		Low, High int
		Set       bool
	}
)

const (
	layerFresh int32 = iota
	layerInstalled
	layerReleased
)

// NewLayer returns a fresh layer playing s at unity gain and pitch, for all
// velocities and notes.
func NewLayer(s *Sample) *Layer {
	return &Layer{sample: s, gain: 1, minVelocity: 0, maxVelocity: 1}
}

// Copy returns a fresh layer with the same parameters. The copy gets its own
// handle to the sample and shares its payload without holding a reference to
// it: releasing or unloading the copy never gives the payload back. Use
// Retain for a copy that holds its own reference.
func (l *Layer) Copy() *Layer {
	return newLayerFrom(l, l.sample.WithFilename(l.sample.Filename()))
}

// Retain returns a fresh copy of the layer holding its own reference to the
// payload, taken from samples. A layer without a loaded sample is copied as
// with Copy.
func (l *Layer) Retain(samples SampleLoader) (*Layer, error) {
	if !l.sample.Loaded() {
		return l.Copy(), nil
	}
	s, err := samples.RetainSample(l.sample)
	if err != nil {
		return nil, fmt.Errorf("could not retain sample %v: %w", l.sample.Filename(), err)
	}
	ret := newLayerFrom(l, s.WithFilename(l.sample.Filename()))
	ret.owner = samples
	return ret, nil
}

func newLayerFrom(template *Layer, s *Sample) *Layer {
	return &Layer{
		sample:      s,
		gain:        template.gain,
		pitch:       template.pitch,
		minVelocity: template.minVelocity,
		maxVelocity: template.maxVelocity,
		pitchRange:  template.pitchRange,
	}
}

func (l *Layer) Sample() *Sample { return l.sample }
func (l *Layer) Gain() float32   { return l.gain }
func (l *Layer) Pitch() float32  { return l.pitch }

func (l *Layer) VelocityRange() (low, high float32) {
	return l.minVelocity, l.maxVelocity
}

func (l *Layer) PitchRange() PitchRange { return l.pitchRange }

// Owned reports whether the layer holds a reference to its sample payload.
func (l *Layer) Owned() bool { return l.owner != nil && l.sample.Loaded() }

// SetGain sets the gain of the layer. Negative gains are rejected.
func (l *Layer) SetGain(v float32) (ok bool) {
	if v < 0 {
		return false
	}
	l.gain = v
	return true
}

// SetPitch sets the pitch offset in semitones. Non-finite values are
// rejected.
func (l *Layer) SetPitch(semitones float32) (ok bool) {
	if math.IsNaN(float64(semitones)) || math.IsInf(float64(semitones), 0) {
		return false
	}
	l.pitch = semitones
	return true
}

// SetVelocityRange sets the velocities the layer answers to; 0 <= low <= high
// <= 1 must hold.
func (l *Layer) SetVelocityRange(low, high float32) (ok bool) {
	if low < 0 || high > 1 || low > high {
		return false
	}
	l.minVelocity, l.maxVelocity = low, high
	return true
}

// SetPitchRange limits the notes the layer answers to. A range with Set false
// removes the limit.
func (l *Layer) SetPitchRange(r PitchRange) (ok bool) {
	if !r.Set {
		l.pitchRange = PitchRange{}
		return true
	}
	if r.Low < MIDINoteMin || r.High > MIDINoteMax || r.Low > r.High {
		return false
	}
	l.pitchRange = r
	return true
}

// Accepts reports whether the layer should sound for a note triggered with
// velocity.
func (l *Layer) Accepts(velocity float32, note int) bool {
	if velocity < l.minVelocity || velocity > l.maxVelocity {
		return false
	}
	if l.pitchRange.Set && (note < l.pitchRange.Low || note > l.pitchRange.High) {
		return false
	}
	return true
}

// Released reports whether the layer has been removed from its slot.
func (l *Layer) Released() bool {
	return l.state.Load() == layerReleased
}

func (l *Layer) install() bool {
	return l.state.CompareAndSwap(layerFresh, layerInstalled)
}

// release marks the layer released and gives its payload reference back.
func (l *Layer) release() error {
	l.state.Store(layerReleased)
	owner := l.owner
	l.owner = nil
	if owner == nil || !l.sample.Loaded() {
		return nil
	}
	if err := owner.UnloadSample(l.sample); err != nil {
		return fmt.Errorf("could not unload sample %v: %w", l.sample.Filename(), err)
	}
	return nil
}

// loadSample returns a fresh copy of the layer with its sample loaded from
// dir. Absolute filenames are loaded as is.
func (l *Layer) loadSample(dir string, samples SampleLoader) (*Layer, error) {
	filename := l.sample.Filename()
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, filename)
	}
	s, err := samples.LoadSample(path)
	if err != nil {
		return nil, fmt.Errorf("could not load sample %v: %w", path, err)
	}
	if !s.Loaded() {
		return nil, fmt.Errorf("could not load sample %v: %w", path, ErrSampleNotLoaded)
	}
	ret := newLayerFrom(l, s.WithFilename(filename))
	ret.owner = samples
	return ret, nil
}

// unloaded returns a fresh copy of the layer without payload.
func (l *Layer) unloaded() *Layer {
	return newLayerFrom(l, l.sample.Unloaded())
}

// ReadLayer reads a layer node. The sample of the layer is not loaded.
func ReadLayer(node *doc.Node) *Layer {
	l := NewLayer(NewSample(node.ReadString("filename", "", false, false), nil))
	low := node.ReadFloat("min", 0, true, true)
	high := node.ReadFloat("max", 1, true, true)
	if !l.SetVelocityRange(low, high) {
		node.Logger().Error("invalid velocity range, using the whole range", "filename", l.sample.Filename(), "min", low, "max", high)
	}
	gain := node.ReadFloat("gain", 1, true, false)
	if !l.SetGain(gain) {
		node.Logger().Error("negative layer gain, using 1", "filename", l.sample.Filename(), "gain", gain)
	}
	pitch := node.ReadFloat("pitch", 0, true, false)
	if !l.SetPitch(pitch) {
		node.Logger().Error("invalid layer pitch, using 0", "filename", l.sample.Filename(), "pitch", pitch)
	}
	if node.Child("minPitch") != nil || node.Child("maxPitch") != nil {
		r := PitchRange{
			Low:  node.ReadInt("minPitch", MIDINoteMin, true, false),
			High: node.ReadInt("maxPitch", MIDINoteMax, true, false),
			Set:  true,
		}
		if !l.SetPitchRange(r) {
			node.Logger().Error("invalid pitch range, accepting all notes", "filename", l.sample.Filename(), "minPitch", r.Low, "maxPitch", r.High)
		}
	}
	return l
}

// SaveTo appends a layer node to parent.
func (l *Layer) SaveTo(parent *doc.Node) {
	node := parent.CreateChild("layer")
	node.WriteString("filename", l.sample.Filename())
	node.WriteFloat("min", l.minVelocity)
	node.WriteFloat("max", l.maxVelocity)
	node.WriteFloat("gain", l.gain)
	node.WriteFloat("pitch", l.pitch)
	if l.pitchRange.Set {
		node.WriteInt("minPitch", l.pitchRange.Low)
		node.WriteInt("maxPitch", l.pitchRange.High)
	}
}
