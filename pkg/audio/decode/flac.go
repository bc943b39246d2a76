// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes the subframes of FLAC frames read by the FLAC demuxer
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac/frame"
	"github.com/musics-player/musics-go/pkg/audio"
)

// FLACDecoder decodes FLAC frames
type FLACDecoder struct {
	params audio.CodecParams
}

// NewFLAC creates a new FLAC decoder
func NewFLAC(params audio.CodecParams) (Decoder, error) {
	if params.Codec != CodecFLAC {
		return nil, audio.UnsupportedError("flac", "invalid codec for FLAC decoder: %s", params.Codec)
	}
	if !params.Spec().Valid() {
		return nil, audio.UnsupportedError("flac", "invalid signal: %dHz %d channels", params.SampleRate, params.Channels)
	}

	return &FLACDecoder{
		params: params,
	}, nil
}

// Decode parses the audio samples of the frame carried by pkt.
// The frame header has already been read from the bitstream by the demuxer.
func (d *FLACDecoder) Decode(pkt *audio.Packet) (*audio.SampleBlock, error) {
	f, ok := pkt.Native.(*frame.Frame)
	if !ok || f == nil {
		return nil, audio.DecodeError("flac", errors.New("packet carries no FLAC frame"))
	}

	if err := f.Parse(); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, audio.IOError("flac", err)
		}
		return nil, audio.DecodeError("flac", err)
	}

	channels := len(f.Subframes)
	if channels == 0 {
		return nil, audio.DecodeError("flac", errors.New("frame has no subframes"))
	}

	bits := int(f.BitsPerSample)
	if bits == 0 {
		bits = d.params.BitDepth
	}

	frames := int(f.BlockSize)
	samples := make([]int16, frames*channels)
	for ch, sub := range f.Subframes {
		if len(sub.Samples) < frames {
			return nil, audio.DecodeError("flac", fmt.Errorf("subframe %d has %d samples, want %d", ch, len(sub.Samples), frames))
		}
		for i := 0; i < frames; i++ {
			samples[i*channels+ch] = audio.ScaleToInt16(sub.Samples[i], bits)
		}
	}

	spec := audio.SignalSpec{SampleRate: int(f.SampleRate), Channels: channels}
	if spec.SampleRate == 0 {
		spec.SampleRate = d.params.SampleRate
	}

	return audio.NewSampleBlock(spec, samples), nil
}

// Reset is a no-op, every FLAC frame decodes independently
func (d *FLACDecoder) Reset() {}

// Close releases decoder resources
func (d *FLACDecoder) Close() error {
	return nil
}
