// ABOUTME: PCM audio decoder
// ABOUTME: Decodes 8/16/24/32-bit integer and 32-bit float PCM to int16 samples
package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/musics-player/musics-go/pkg/audio"
)

// PCMDecoder decodes little-endian PCM audio
type PCMDecoder struct {
	spec     audio.SignalSpec
	bitDepth int
	float    bool
}

// NewPCM creates a new PCM decoder
func NewPCM(params audio.CodecParams) (Decoder, error) {
	if params.Codec != CodecPCM {
		return nil, audio.UnsupportedError("pcm", "invalid codec for PCM decoder: %s", params.Codec)
	}

	switch params.BitDepth {
	case 8, 16, 24:
		if params.Float {
			return nil, audio.UnsupportedError("pcm", "unsupported float bit depth: %d", params.BitDepth)
		}
	case 32:
	default:
		return nil, audio.UnsupportedError("pcm", "unsupported bit depth: %d (supported: 8, 16, 24, 32)", params.BitDepth)
	}

	if !params.Spec().Valid() {
		return nil, audio.UnsupportedError("pcm", "invalid signal: %dHz %d channels", params.SampleRate, params.Channels)
	}

	return &PCMDecoder{
		spec:     params.Spec(),
		bitDepth: params.BitDepth,
		float:    params.Float,
	}, nil
}

// Decode converts PCM bytes to int16 samples
func (d *PCMDecoder) Decode(pkt *audio.Packet) (*audio.SampleBlock, error) {
	data := pkt.Data
	width := d.bitDepth / 8
	frameSize := width * d.spec.Channels
	if len(data)%frameSize != 0 {
		return nil, audio.DecodeError("pcm", fmt.Errorf("packet of %d bytes is not a whole number of %d-byte frames", len(data), frameSize))
	}

	numSamples := len(data) / width
	samples := make([]int16, numSamples)

	switch {
	case d.bitDepth == 8:
		// 8-bit PCM is unsigned
		for i := 0; i < numSamples; i++ {
			samples[i] = int16(int32(data[i])-128) << 8
		}
	case d.bitDepth == 16:
		for i := 0; i < numSamples; i++ {
			samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case d.bitDepth == 24:
		for i := 0; i < numSamples; i++ {
			b := [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
			samples[i] = audio.SampleToInt16(audio.SampleFrom24Bit(b))
		}
	case d.float:
		for i := 0; i < numSamples; i++ {
			f := math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
			samples[i] = audio.FloatToInt16(float64(f))
		}
	default:
		for i := 0; i < numSamples; i++ {
			samples[i] = audio.ScaleToInt16(int32(binary.LittleEndian.Uint32(data[i*4:])), 32)
		}
	}

	return audio.NewSampleBlock(d.spec, samples), nil
}

// Reset is a no-op, PCM is stateless
func (d *PCMDecoder) Reset() {}

// Close releases resources
func (d *PCMDecoder) Close() error {
	return nil
}
