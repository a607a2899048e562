package drumkit_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/vsariola/drumkit"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeSamples loads every path except those whose base name is in fail.
type fakeSamples struct {
	mu        sync.Mutex
	fail      map[string]bool
	loads     int
	retains   int
	unloads   int
	unloadErr error
}

func (f *fakeSamples) LoadSample(path string) (*drumkit.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[filepath.Base(path)] {
		return nil, fmt.Errorf("%v: %w", path, errors.New("no such sample"))
	}
	f.loads++
	data := &drumkit.SampleData{SampleRate: 44100, Frames: make(drumkit.AudioBuffer, 64)}
	return drumkit.NewSample(path, data), nil
}

func (f *fakeSamples) RetainSample(s *drumkit.Sample) (*drumkit.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retains++
	return s.WithFilename(s.Filename()), nil
}

// held returns the number of references handed out and not given back.
func (f *fakeSamples) held() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads + f.retains - f.unloads
}

func (f *fakeSamples) UnloadSample(s *drumkit.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.unloadErr != nil {
		return f.unloadErr
	}
	f.unloads++
	return nil
}

// spyLock counts how it is used and runs onUnlock just before releasing.
type spyLock struct {
	mu       sync.Mutex
	held     atomic.Bool
	locks    int
	onUnlock func()
}

func (l *spyLock) Lock() {
	l.mu.Lock()
	l.held.Store(true)
	l.locks++
}

func (l *spyLock) Unlock() {
	if l.onUnlock != nil {
		l.onUnlock()
	}
	l.held.Store(false)
	l.mu.Unlock()
}

// fakeKits serves a single kit from memory.
type fakeKits struct {
	kit *drumkit.Kit
	err error
}

func (f *fakeKits) KitPath(name string) (string, bool) {
	if f.kit == nil || name != f.kit.Name {
		return "", false
	}
	return f.kit.Path, true
}

func (f *fakeKits) LoadKit(path string) (*drumkit.Kit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.kit.Copy(), nil
}

func layerWith(filename string, gain float32) *drumkit.Layer {
	l := drumkit.NewLayer(drumkit.NewSample(filename, nil))
	l.SetGain(gain)
	return l
}

// templateInstrument returns an instrument with n layers called s<idx>.wav.
func templateInstrument(id int, name string, n int) *drumkit.Instrument {
	i := drumkit.NewInstrument(id, name, drumkit.ADSR{Attack: 5, Decay: 10, Sustain: 0.5, Release: 200})
	i.SetGain(0.9)
	i.SetVolume(0.7)
	i.SetPanL(0.4)
	i.SetPanR(0.6)
	i.SetFilterActive(true)
	i.SetFilterCutoff(0.3)
	i.SetFilterResonance(0.2)
	i.SetRandomPitchFactor(0.1)
	i.SetMuted(true)
	i.SetMuteGroup(2)
	i.SetMIDIOutChannel(9)
	i.SetMIDIOutNote(38)
	i.SetFXLevel(0, 0.5)
	for idx := 0; idx < n; idx++ {
		i.ReplaceLayer(idx, layerWith(fmt.Sprintf("s%d.wav", idx), 1), nil)
	}
	return i
}
