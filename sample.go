package drumkit

import (
	"errors"
	"time"
)

type (
	// AudioBuffer is a buffer of stereo frames.
	AudioBuffer [][2]float32

	// SampleData is the decoded payload of a sample. It is shared by all the
	// layers playing the same file and is never modified after decoding.
	SampleData struct {
		SampleRate int
		Frames     AudioBuffer
	}

	// Sample is an immutable handle to a sample file. The handle is unloaded
	// when it carries no payload, e.g. when read from a document before the
	// samples of the kit have been loaded.
	Sample struct {
		filename string
		data     *SampleData
	}

	// SampleLoader loads and unloads samples. Every handle returned by
	// LoadSample or RetainSample holds one reference to its payload, given
	// back by one UnloadSample. Failures are never fatal to the caller: a
	// layer whose sample fails to load is dropped.
	SampleLoader interface {
		LoadSample(path string) (*Sample, error)
		RetainSample(s *Sample) (*Sample, error)
		UnloadSample(s *Sample) error
	}
)

var ErrSampleNotLoaded = errors.New("sample is not loaded")

// NewSample returns a handle to filename. data may be nil.
func NewSample(filename string, data *SampleData) *Sample {
	return &Sample{filename: filename, data: data}
}

func (s *Sample) Filename() string {
	if s == nil {
		return ""
	}
	return s.filename
}

// Data returns the payload of the sample, or nil when not loaded.
func (s *Sample) Data() *SampleData {
	if s == nil {
		return nil
	}
	return s.data
}

func (s *Sample) Loaded() bool {
	return s != nil && s.data != nil
}

// WithFilename returns a handle to the same payload under another filename.
func (s *Sample) WithFilename(filename string) *Sample {
	return &Sample{filename: filename, data: s.Data()}
}

// Unloaded returns a handle to the same file without payload.
func (s *Sample) Unloaded() *Sample {
	return &Sample{filename: s.Filename()}
}

// Len returns the number of frames in the sample.
func (s *Sample) Len() int {
	if d := s.Data(); d != nil {
		return len(d.Frames)
	}
	return 0
}

func (s *Sample) Duration() time.Duration {
	d := s.Data()
	if d == nil || d.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(d.Frames)) * time.Second / time.Duration(d.SampleRate)
}
