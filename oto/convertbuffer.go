package oto

import (
	"encoding/binary"
	"math"

	"github.com/vsariola/drumkit"
)

// FramesToFloat32LE appends the frames as interleaved little-endian float32
// samples to dst. Samples are clipped to [-1,1].
func FramesToFloat32LE(frames drumkit.AudioBuffer, dst []byte) []byte {
	for _, f := range frames {
		for _, v := range f {
			v = max(-1, min(1, v))
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	}
	return dst
}
