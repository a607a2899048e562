// Package player is a render path for drum kit instruments: it turns
// triggers into voices playing the layers of the instruments and mixes them
// into stereo audio.
package player

import (
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/drumkit"
	"gitlab.com/gomidi/midi/v2"
)

type (
	// Player owns the render lock of the instruments it plays. Instruments
	// attached to the player must only be replaced or edited while holding
	// the lock returned by RenderLock. Triggers and MIDI out messages travel
	// through buffered channels that are never waited on by the player.
	Player struct {
		lock        sync.Mutex
		instruments drumkit.InstrumentList
		voices      []voice
		peaks       [][2]float32
		sampleRate  int
		rand        *rand.Rand

		triggers chan Trigger
		midiOut  chan<- midi.Message

		tmpL, tmpR, outL, outR, abs []float32

		log *slog.Logger
	}

	// Trigger starts a note of an instrument. Velocity is in [0,1].
	Trigger struct {
		Instrument *drumkit.Instrument
		Note       int
		Velocity   float32
	}

	voice struct {
		instrument int
		data       *drumkit.SampleData
		pos, step  float64
		gainL      float32
		gainR      float32
	}
)

const (
	MaxVoices       = 64
	triggerCapacity = 1024
)

// New returns a player rendering at sampleRate. A nil log discards the
// diagnostics.
func New(sampleRate int, log *slog.Logger) *Player {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Player{
		sampleRate: sampleRate,
		triggers:   make(chan Trigger, triggerCapacity),
		rand:       rand.New(rand.NewPCG(1, 2)),
		log:        log,
	}
}

// RenderLock returns the lock the player holds while reading the
// instruments.
func (p *Player) RenderLock() sync.Locker {
	return &p.lock
}

func (p *Player) SampleRate() int {
	return p.sampleRate
}

// SetInstruments replaces the instruments played. Playing voices are
// stopped.
func (p *Player) SetInstruments(list drumkit.InstrumentList) {
	p.lock.Lock()
	p.instruments = list
	p.voices = p.voices[:0]
	p.peaks = make([][2]float32, len(list))
	p.lock.Unlock()
	p.log.Debug("instruments set", "count", len(list))
}

// SetMIDIOut sets where MIDI out messages of triggered instruments are sent.
// Messages that do not fit in c are dropped. nil disables MIDI out.
func (p *Player) SetMIDIOut(c chan<- midi.Message) {
	p.lock.Lock()
	p.midiOut = c
	p.lock.Unlock()
}

// Trigger queues a note to be started at the beginning of the next block.
// It returns false if the queue is full.
func (p *Player) Trigger(t Trigger) bool {
	if t.Instrument == nil {
		return false
	}
	t.Instrument.Enqueue()
	if !TrySend(p.triggers, t) {
		t.Instrument.Dequeue()
		p.log.Warn("trigger queue full, dropping note")
		return false
	}
	return true
}

// Playing returns the number of voices playing.
func (p *Player) Playing() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.voices)
}

// Process renders the next len(buffer) frames into buffer.
func (p *Player) Process(buffer drumkit.AudioBuffer) {
	n := len(buffer)
	p.lock.Lock()
	defer p.lock.Unlock()
	p.drainTriggers()
	if n == 0 {
		return
	}
	p.outL = vek32.Zeros_Into(grow(p.outL, n), n)
	p.outR = vek32.Zeros_Into(grow(p.outR, n), n)
	for i := range p.peaks {
		p.peaks[i] = [2]float32{}
	}
	alive := p.voices[:0]
	for _, v := range p.voices {
		p.tmpL, p.tmpR = grow(p.tmpL, n), grow(p.tmpR, n)
		done := v.render(p.tmpL[:n], p.tmpR[:n])
		vek32.MulNumber_Inplace(p.tmpL[:n], v.gainL)
		vek32.MulNumber_Inplace(p.tmpR[:n], v.gainR)
		vek32.Add_Inplace(p.outL, p.tmpL[:n])
		vek32.Add_Inplace(p.outR, p.tmpR[:n])
		pk := &p.peaks[v.instrument]
		pk[0] = max(pk[0], p.peak(p.tmpL[:n]))
		pk[1] = max(pk[1], p.peak(p.tmpR[:n]))
		if done {
			p.noteOff(p.instruments[v.instrument])
			continue
		}
		alive = append(alive, v)
	}
	p.voices = alive
	for i, instr := range p.instruments {
		instr.SetPeaks(p.peaks[i][0], p.peaks[i][1])
	}
	for i := range buffer {
		buffer[i] = [2]float32{p.outL[i], p.outR[i]}
	}
}

func (p *Player) peak(x []float32) float32 {
	p.abs = grow(p.abs, len(x))
	copy(p.abs, x)
	vek32.Abs_Inplace(p.abs)
	return vek32.Max(p.abs)
}

func (p *Player) drainTriggers() {
	for {
		select {
		case t := <-p.triggers:
			t.Instrument.Dequeue()
			p.start(t)
		default:
			return
		}
	}
}

func (p *Player) start(t Trigger) {
	idx := -1
	soloing := false
	for i, instr := range p.instruments {
		if instr == t.Instrument {
			idx = i
		}
		soloing = soloing || instr.Soloed()
	}
	instr := t.Instrument
	if idx < 0 || !instr.Active() || instr.Muted() || (soloing && !instr.Soloed()) {
		return
	}
	if group := instr.MuteGroup(); group >= 0 {
		alive := p.voices[:0]
		for _, v := range p.voices {
			other := p.instruments[v.instrument]
			if v.instrument != idx && other.MuteGroup() == group {
				p.noteOff(other)
				continue
			}
			alive = append(alive, v)
		}
		p.voices = alive
	}
	var layer *drumkit.Layer
	for l := 0; l < drumkit.MaxLayers; l++ {
		if c := instr.Layer(l); c != nil && c.Sample().Loaded() && c.Accepts(t.Velocity, t.Note) {
			layer = c
			break
		}
	}
	if layer == nil {
		return
	}
	data := layer.Sample().Data()
	if len(data.Frames) == 0 || data.SampleRate <= 0 {
		return
	}
	pitch := float64(layer.Pitch())
	if f := instr.RandomPitchFactor(); f > 0 {
		pitch += float64(f) * (p.rand.Float64()*2 - 1)
	}
	gain := instr.Gain() * layer.Gain() * t.Velocity * instr.Volume()
	v := voice{
		instrument: idx,
		data:       data,
		step:       math.Exp2(pitch/12) * float64(data.SampleRate) / float64(p.sampleRate),
		gainL:      gain * instr.PanL(),
		gainR:      gain * instr.PanR(),
	}
	if len(p.voices) >= MaxVoices {
		p.noteOff(p.instruments[p.voices[0].instrument])
		p.voices = append(p.voices[:0], p.voices[1:]...)
	}
	p.voices = append(p.voices, v)
	if msg, ok := instr.MIDINoteOn(t.Velocity); ok && p.midiOut != nil {
		TrySend(p.midiOut, msg)
	}
}

func (p *Player) noteOff(instr *drumkit.Instrument) {
	if msg, ok := instr.MIDINoteOff(); ok && p.midiOut != nil {
		TrySend(p.midiOut, msg)
	}
}

// render writes the next frames of the voice, linearly interpolated, and
// reports whether the sample ended.
func (v *voice) render(l, r []float32) (done bool) {
	frames := v.data.Frames
	for i := range l {
		idx := int(v.pos)
		if idx >= len(frames) {
			clear(l[i:])
			clear(r[i:])
			return true
		}
		a := frames[idx]
		b := a
		if idx+1 < len(frames) {
			b = frames[idx+1]
		}
		frac := float32(v.pos - float64(idx))
		l[i] = a[0] + (b[0]-a[0])*frac
		r[i] = a[1] + (b[1]-a[1])*frac
		v.pos += v.step
	}
	return int(v.pos) >= len(frames)
}

// TrySend is a helper function to send a value to a channel if it is not
// full. It is guaranteed to be non-blocking. Return true if the value was
// sent, false otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

func grow(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}
