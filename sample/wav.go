// Package sample decodes sample files and keeps the decoded payloads shared
// between the layers that play them.
package sample

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/vsariola/drumkit"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

var ErrUnsupportedFormat = errors.New("unsupported sample format")

// Decode reads a PCM wav file. Mono files are spread to both channels, files
// with more than two channels keep the first two.
func Decode(r io.ReadSeeker) (*drumkit.SampleData, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a wav file", ErrUnsupportedFormat)
	}
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: wav audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not decode wav: %w", err)
	}
	channels := int(dec.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrUnsupportedFormat)
	}
	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	scale, offset, err := pcmScale(bitDepth)
	if err != nil {
		return nil, err
	}
	frames := make(drumkit.AudioBuffer, len(buf.Data)/channels)
	for i := range frames {
		l := (float32(buf.Data[i*channels]) - offset) * scale
		r := l
		if channels > 1 {
			r = (float32(buf.Data[i*channels+1]) - offset) * scale
		}
		frames[i] = [2]float32{l, r}
	}
	return &drumkit.SampleData{SampleRate: int(dec.SampleRate), Frames: frames}, nil
}

// pcmScale returns the factor and offset mapping integer samples of the bit
// depth to [-1,1]. 8 bit wav samples are unsigned.
func pcmScale(bitDepth int) (scale, offset float32, err error) {
	switch bitDepth {
	case 8:
		return 1.0 / 128, 128, nil
	case 16, 24, 32:
		return float32(1 / math.Exp2(float64(bitDepth-1))), 0, nil
	}
	return 0, 0, fmt.Errorf("%w: %d bit samples", ErrUnsupportedFormat, bitDepth)
}

// Encode writes the payload as a stereo PCM wav file of the given bit depth.
func Encode(w io.WriteSeeker, data *drumkit.SampleData, bitDepth int) error {
	scale, offset, err := pcmScale(bitDepth)
	if err != nil {
		return err
	}
	maxValue := float64(1/scale) - 1
	ints := make([]int, 0, 2*len(data.Frames))
	for _, f := range data.Frames {
		for _, v := range f {
			s := math.Round(math.Max(-maxValue-1, math.Min(maxValue, float64(v/scale))))
			ints = append(ints, int(s+float64(offset)))
		}
	}
	enc := wav.NewEncoder(w, data.SampleRate, bitDepth, 2, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: data.SampleRate},
		Data:           ints,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("could not encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finish wav: %w", err)
	}
	return nil
}
