// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all codec decoders and the codec registry
package decode

import (
	"github.com/musics-player/musics-go/pkg/audio"
)

// Decoder decodes packets of one codec into int16 sample blocks
type Decoder interface {
	// Decode converts one packet into a block of interleaved samples.
	// A failure classified as audio.KindDecode affects only this packet.
	Decode(pkt *audio.Packet) (*audio.SampleBlock, error)

	// Reset discards codec state after a seek
	Reset()

	// Close releases decoder resources
	Close() error
}

// New creates the decoder for the codec named in params
func New(params audio.CodecParams) (Decoder, error) {
	switch params.Codec {
	case CodecPCM:
		return NewPCM(params)
	case CodecOpus:
		return NewOpus(params)
	case CodecFLAC:
		return NewFLAC(params)
	}
	return nil, audio.UnsupportedError("decode", "no decoder for codec %q", params.Codec)
}

// Codec identifiers used in audio.CodecParams
const (
	CodecPCM  = "pcm"
	CodecOpus = "opus"
	CodecFLAC = "flac"
)
