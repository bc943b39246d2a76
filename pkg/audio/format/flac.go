// ABOUTME: FLAC container reader
// ABOUTME: Reads FLAC frame headers with mewkiz/flac, leaving subframes to the codec
package format

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mewkiz/flac"
	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/decode"
)

// flacReader hands out one packet per FLAC frame
type flacReader struct {
	singleTrack
	src    audio.MediaSource
	stream *flac.Stream
	pos    uint64
	atEnd  bool
}

func newFLACReader(src audio.MediaSource) (*flacReader, error) {
	stream, err := flac.NewSeek(src)
	if err != nil {
		return nil, audio.DecodeError("flac", fmt.Errorf("failed to parse stream info: %w", err))
	}

	info := stream.Info
	return &flacReader{
		src:    src,
		stream: stream,
		singleTrack: singleTrack{track: audio.Track{
			ID: 0,
			Params: audio.CodecParams{
				Codec:      decode.CodecFLAC,
				SampleRate: int(info.SampleRate),
				Channels:   int(info.NChannels),
				BitDepth:   int(info.BitsPerSample),
				NFrames:    info.NSamples,
				TimeBase:   audio.NewTimeBase(int(info.SampleRate)),
			},
		}},
	}, nil
}

// NextPacket parses the next frame header. The packet must be decoded
// before the next call since the subframes follow in the same bitstream.
func (r *flacReader) NextPacket() (*audio.Packet, error) {
	if r.atEnd {
		return nil, io.EOF
	}

	f, err := r.stream.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.atEnd = true
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, audio.IOError("flac", err)
		}
		return nil, audio.DecodeError("flac", err)
	}

	pkt := &audio.Packet{
		TrackID:  r.track.ID,
		TS:       r.pos,
		Duration: uint64(f.BlockSize),
		Native:   f,
	}
	r.pos += uint64(f.BlockSize)
	return pkt, nil
}

// Seek moves to the frame containing the requested sample
func (r *flacReader) Seek(to time.Duration) (SeekedTo, error) {
	ts := r.track.Params.TimeBase.CalcTimestamp(to)
	seeked := SeekedTo{TrackID: r.track.ID, RequiredTS: ts}

	if total := r.track.Params.NFrames; total > 0 && ts >= total {
		r.atEnd = true
		r.pos = total
		seeked.ActualTS = total
		return seeked, nil
	}

	actual, err := r.stream.Seek(ts)
	if err != nil {
		return SeekedTo{}, &audio.Error{Kind: audio.KindSeek, Op: "flac seek", Err: err}
	}

	r.atEnd = false
	r.pos = actual
	seeked.ActualTS = actual
	return seeked, nil
}

func (r *flacReader) Close() error {
	return r.src.Close()
}
