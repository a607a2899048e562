// Package oto plays a drum kit player through the audio device of the
// system.
package oto

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/drumkit"
)

type (
	// Source renders audio into a buffer; *player.Player is one.
	Source interface {
		Process(buffer drumkit.AudioBuffer)
	}

	// Reader pulls frames from a Source and serves them as the float32
	// little-endian stereo stream oto consumes.
	Reader struct {
		source  Source
		frames  drumkit.AudioBuffer
		pending []byte
	}

	OtoContext struct {
		context *oto.Context
	}

	OtoOutput struct {
		player *oto.Player
	}
)

const bytesPerFrame = 8

func NewReader(s Source) *Reader {
	return &Reader{source: s}
}

// Read implements io.Reader. It never fails; the stream ends only when the
// player reading it is closed.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			frames := max((len(p)-n+bytesPerFrame-1)/bytesPerFrame, 1)
			if cap(r.frames) < frames {
				r.frames = make(drumkit.AudioBuffer, frames)
			}
			r.frames = r.frames[:frames]
			r.source.Process(r.frames)
			r.pending = FramesToFloat32LE(r.frames, r.pending[:0])
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	return n, nil
}

// NewContext opens the audio device for stereo output at sampleRate, with a
// buffer of bufferSize frames.
func NewContext(sampleRate, bufferSize int) (*OtoContext, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(bufferSize) * time.Second / time.Duration(sampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts playing the source. Playback continues until the output is
// closed.
func (c *OtoContext) Play(s Source) *OtoOutput {
	player := c.context.NewPlayer(NewReader(s))
	player.Play()
	return &OtoOutput{player: player}
}

func (c *OtoContext) Suspend() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Close disposes of resources
func (o *OtoOutput) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
