package drumkit

import (
	"fmt"
	"path/filepath"
	"sync"
)

// ReplaceLayer installs l in slot idx, or clears the slot when l is nil. The
// slot is switched while holding lock, if not nil, and its previous occupant
// is released after the lock has been released, giving back its sample
// reference. Layers that have already been installed somewhere are rejected.
func (i *Instrument) ReplaceLayer(idx int, l *Layer, lock sync.Locker) (ok bool) {
	if idx < 0 || idx >= MaxLayers {
		i.logger().Error("layer slot out of bounds", "instrument", i.name, "slot", idx)
		return false
	}
	if l != nil && !l.install() {
		i.logger().Error("layer is already owned by a slot", "instrument", i.name, "slot", idx)
		return false
	}
	if err := i.swapLayer(idx, l, lock); err != nil {
		i.logger().Error("replaced layer kept its sample", "instrument", i.name, "slot", idx, "err", err)
	}
	return true
}

// swapLayer publishes an installed layer (or nil) in slot idx and releases
// the previous occupant once the lock is no longer held.
func (i *Instrument) swapLayer(idx int, l *Layer, lock sync.Locker) error {
	if lock != nil {
		lock.Lock()
	}
	old := i.layers[idx]
	i.layers[idx] = l
	if lock != nil {
		lock.Unlock()
	}
	if old == nil {
		return nil
	}
	return old.release()
}

func (i *Instrument) installLayer(idx int, l *Layer, lock sync.Locker) error {
	if l != nil {
		l.install()
	}
	return i.swapLayer(idx, l, lock)
}

// LoadFromKit replaces the state of the instrument with that of template, an
// instrument of kit. Every layer of the template gets its sample loaded from
// the kit directory; a slot whose sample cannot be loaded is left empty. When
// lock is not nil, samples are loaded without holding it and it is held only
// while a slot is switched, then once more while the remaining parameters are
// copied.
//
// The effect send levels and the MIDI out parameters are not copied from the
// template.
func (i *Instrument) LoadFromKit(kit *Kit, template *Instrument, samples SampleLoader, lock sync.Locker) {
	if kit == nil || template == nil {
		i.logger().Error("nothing to load from", "instrument", i.name)
		return
	}
	for idx, src := range template.layers {
		var l *Layer
		if src != nil {
			var err error
			if l, err = src.loadSample(kit.Path, samples); err != nil {
				i.logger().Error("could not load layer, leaving the slot empty", "instrument", template.name, "slot", idx, "err", err)
			}
		}
		if err := i.installLayer(idx, l, lock); err != nil {
			i.logger().Error("replaced layer kept its sample", "instrument", template.name, "slot", idx, "err", err)
		}
	}
	if lock != nil {
		lock.Lock()
	}
	i.id = template.id
	i.name = template.name
	i.gain = template.gain
	i.volume = template.volume
	i.panL = template.panL
	i.panR = template.panR
	i.adsr = template.adsr
	i.filterActive = template.filterActive
	i.filterCutoff = template.filterCutoff
	i.filterResonance = template.filterResonance
	i.randomPitchFactor = template.randomPitchFactor
	i.muted = template.muted
	i.muteGroup = template.muteGroup
	if lock != nil {
		lock.Unlock()
	}
}

// LoadFromLibrary looks up kitName through kits and loads its instrument
// called instrumentName with LoadFromKit. It reports false, leaving the
// instrument untouched, if the kit or the instrument cannot be found.
func (i *Instrument) LoadFromLibrary(kits KitLoader, kitName, instrumentName string, samples SampleLoader, lock sync.Locker) bool {
	dir, ok := kits.KitPath(kitName)
	if !ok || dir == "" {
		i.logger().Debug("kit not found", "kit", kitName)
		return false
	}
	kit, err := kits.LoadKit(dir)
	if err != nil {
		i.logger().Error("could not load kit", "kit", kitName, "err", err)
		return false
	}
	if kit.Path == "" {
		kit.Path = dir
	}
	template := kit.Instruments.Find(instrumentName)
	if template == nil {
		i.logger().Warn("instrument not found in kit", "kit", kitName, "instrument", instrumentName)
		return false
	}
	i.LoadFromKit(kit, template, samples, lock)
	return true
}

// LoadInstrument returns a new instrument loaded from the kit library. If the
// kit or the instrument cannot be found, the empty instrument is returned.
func LoadInstrument(kits KitLoader, kitName, instrumentName string, samples SampleLoader) *Instrument {
	i := EmptyInstrument()
	i.LoadFromLibrary(kits, kitName, instrumentName, samples, nil)
	return i
}

// LoadSamples loads the samples of all the layers from dir. Samples the
// layers already held are given back. It stops at the first layer that
// fails; the layers before it stay loaded.
func (i *Instrument) LoadSamples(dir string, samples SampleLoader, lock sync.Locker) error {
	for idx, l := range i.layers {
		if l == nil {
			continue
		}
		loaded, err := l.loadSample(dir, samples)
		if err != nil {
			return fmt.Errorf("layer %d of %v: %w", idx, i.name, err)
		}
		if err := i.installLayer(idx, loaded, lock); err != nil {
			return fmt.Errorf("layer %d of %v: %w", idx, i.name, err)
		}
	}
	return nil
}

// UnloadSamples drops the payloads of all the layers that have one loaded,
// giving their references back to the loaders they came from. Layers that
// share a payload without holding a reference, see Layer.Copy, are emptied
// without touching any loader. It stops at the first layer that fails; its
// slot is left without payload.
func (i *Instrument) UnloadSamples(lock sync.Locker) error {
	for idx, l := range i.layers {
		if l == nil || !l.sample.Loaded() {
			continue
		}
		if err := i.installLayer(idx, l.unloaded(), lock); err != nil {
			return fmt.Errorf("layer %d of %v: %w", idx, i.name, err)
		}
	}
	return nil
}

// SamplePaths returns the paths of the samples of all the layers, resolved
// against dir.
func (i *Instrument) SamplePaths(dir string) []string {
	var ret []string
	for _, l := range i.layers {
		if l == nil {
			continue
		}
		p := l.sample.Filename()
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		ret = append(ret, p)
	}
	return ret
}
