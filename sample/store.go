package sample

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vsariola/drumkit"
)

type (
	// Store loads sample files and caches their payloads by path, so that
	// every layer playing the same file shares one payload. A payload is
	// dropped when it has been unloaded as many times as it was loaded or
	// retained.
	Store struct {
		log    *slog.Logger
		mu     sync.Mutex
		byPath map[string]*entry
		byData map[*drumkit.SampleData]*entry
	}

	entry struct {
		path string
		data *drumkit.SampleData
		refs int
	}
)

var ErrNotCached = errors.New("sample is not held by the store")

var _ drumkit.SampleLoader = (*Store)(nil)

// NewStore returns an empty store. A nil log discards the diagnostics.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		log:    log,
		byPath: map[string]*entry{},
		byData: map[*drumkit.SampleData]*entry{},
	}
}

// LoadSample returns a handle to the sample at path, decoding the file only
// if it is not cached.
func (s *Store) LoadSample(path string) (*drumkit.Sample, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve %v: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.byPath[abs]; ok {
		e.refs++
		return drumkit.NewSample(path, e.data), nil
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("could not open sample: %w", err)
	}
	defer f.Close()
	data, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	e := &entry{path: abs, data: data, refs: 1}
	s.byPath[abs] = e
	s.byData[data] = e
	s.log.Debug("sample loaded", "path", abs, "frames", len(data.Frames), "rate", data.SampleRate)
	return drumkit.NewSample(path, data), nil
}

// RetainSample takes one more reference to the payload of a handle held by
// the store and returns a handle to it.
func (s *Store) RetainSample(sample *drumkit.Sample) (*drumkit.Sample, error) {
	data := sample.Data()
	if data == nil {
		return nil, fmt.Errorf("%v: %w", sample.Filename(), drumkit.ErrSampleNotLoaded)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byData[data]
	if !ok {
		return nil, fmt.Errorf("%v: %w", sample.Filename(), ErrNotCached)
	}
	e.refs++
	return sample.WithFilename(sample.Filename()), nil
}

// UnloadSample gives back a handle obtained from LoadSample or RetainSample,
// or a copy of it.
func (s *Store) UnloadSample(sample *drumkit.Sample) error {
	data := sample.Data()
	if data == nil {
		return fmt.Errorf("%v: %w", sample.Filename(), drumkit.ErrSampleNotLoaded)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byData[data]
	if !ok {
		return fmt.Errorf("%v: %w", sample.Filename(), ErrNotCached)
	}
	e.refs--
	if e.refs <= 0 {
		delete(s.byData, data)
		delete(s.byPath, e.path)
		s.log.Debug("sample unloaded", "path", e.path)
	}
	return nil
}

// Len returns the number of payloads held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byPath)
}
