// ABOUTME: Opus audio decoder
// ABOUTME: Decodes Opus packets to int16 samples at 48kHz
package decode

import (
	"fmt"

	"github.com/musics-player/musics-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// OpusSampleRate is the rate libopus decodes at
const OpusSampleRate = 48000

// maxOpusFrame is the largest frame a packet can carry (120ms at 48kHz)
const maxOpusFrame = 5760

// OpusDecoder decodes Opus audio
type OpusDecoder struct {
	decoder *opus.Decoder
	spec    audio.SignalSpec
	pcm     []int16
	skip    int // priming frames still to drop
}

// NewOpus creates a new Opus decoder
func NewOpus(params audio.CodecParams) (Decoder, error) {
	if params.Codec != CodecOpus {
		return nil, audio.UnsupportedError("opus", "invalid codec for Opus decoder: %s", params.Codec)
	}
	if params.Channels < 1 || params.Channels > 2 {
		return nil, audio.UnsupportedError("opus", "unsupported channel count: %d", params.Channels)
	}

	spec := audio.SignalSpec{SampleRate: OpusSampleRate, Channels: params.Channels}
	dec, err := opus.NewDecoder(spec.SampleRate, spec.Channels)
	if err != nil {
		return nil, &audio.Error{Kind: audio.KindUnsupported, Op: "opus", Err: fmt.Errorf("failed to create opus decoder: %w", err)}
	}

	return &OpusDecoder{
		decoder: dec,
		spec:    spec,
		pcm:     make([]int16, maxOpusFrame*spec.Channels),
		skip:    params.Delay,
	}, nil
}

// Decode converts one Opus packet to int16 samples
func (d *OpusDecoder) Decode(pkt *audio.Packet) (*audio.SampleBlock, error) {
	n, err := d.decoder.Decode(pkt.Data, d.pcm)
	if err != nil {
		return nil, audio.DecodeError("opus", fmt.Errorf("opus decode failed: %w", err))
	}

	start := 0
	if d.skip > 0 {
		start = min(d.skip, n)
		d.skip -= start
	}

	samples := make([]int16, (n-start)*d.spec.Channels)
	copy(samples, d.pcm[start*d.spec.Channels:n*d.spec.Channels])
	return audio.NewSampleBlock(d.spec, samples), nil
}

// Reset drops decoder state after a seek. Priming is only skipped at stream start.
func (d *OpusDecoder) Reset() {
	if dec, err := opus.NewDecoder(d.spec.SampleRate, d.spec.Channels); err == nil {
		d.decoder = dec
	}
	d.skip = 0
}

// Close releases decoder resources
func (d *OpusDecoder) Close() error {
	return nil
}
