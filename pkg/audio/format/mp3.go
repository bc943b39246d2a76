// ABOUTME: MP3 stream reader
// ABOUTME: Decodes MPEG audio with go-mp3 and hands out 16-bit stereo PCM packets
package format

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/decode"
)

const (
	// go-mp3 always produces 16-bit little-endian stereo
	mp3Channels   = 2
	mp3FrameBytes = 4
	// mp3FramesPerPacket matches one MPEG-1 Layer III frame
	mp3FramesPerPacket = 1152
)

// mp3Reader wraps a go-mp3 decoder, which both demuxes and decodes
type mp3Reader struct {
	singleTrack
	src     audio.MediaSource
	decoder *mp3.Decoder
	pos     uint64
	atEnd   bool
	buf     []byte
}

func newMP3Reader(src audio.MediaSource) (*mp3Reader, error) {
	decoder, err := mp3.NewDecoder(src)
	if err != nil {
		return nil, audio.DecodeError("mp3", fmt.Errorf("failed to create decoder: %w", err))
	}

	var frames uint64
	if length := decoder.Length(); length > 0 {
		frames = uint64(length) / mp3FrameBytes
	}

	rate := decoder.SampleRate()
	return &mp3Reader{
		src:     src,
		decoder: decoder,
		buf:     make([]byte, mp3FramesPerPacket*mp3FrameBytes),
		singleTrack: singleTrack{track: audio.Track{
			ID: 0,
			Params: audio.CodecParams{
				Codec:      decode.CodecPCM,
				SampleRate: rate,
				Channels:   mp3Channels,
				BitDepth:   16,
				NFrames:    frames,
				TimeBase:   audio.NewTimeBase(rate),
			},
		}},
	}, nil
}

func (r *mp3Reader) NextPacket() (*audio.Packet, error) {
	if r.atEnd {
		return nil, io.EOF
	}

	n, err := io.ReadFull(r.decoder, r.buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, audio.DecodeError("mp3", err)
	}

	n -= n % mp3FrameBytes
	if n == 0 {
		r.atEnd = true
		return nil, io.EOF
	}

	data := make([]byte, n)
	copy(data, r.buf[:n])
	frames := uint64(n / mp3FrameBytes)
	pkt := &audio.Packet{
		TrackID:  r.track.ID,
		TS:       r.pos,
		Duration: frames,
		Data:     data,
	}
	r.pos += frames
	return pkt, nil
}

// Seek moves the decoder to the requested frame
func (r *mp3Reader) Seek(to time.Duration) (SeekedTo, error) {
	ts := r.track.Params.TimeBase.CalcTimestamp(to)
	seeked := SeekedTo{TrackID: r.track.ID, RequiredTS: ts}

	if total := r.track.Params.NFrames; total > 0 && ts >= total {
		r.atEnd = true
		r.pos = total
		seeked.ActualTS = total
		return seeked, nil
	}

	off, err := r.decoder.Seek(int64(ts)*mp3FrameBytes, io.SeekStart)
	if err != nil {
		return SeekedTo{}, &audio.Error{Kind: audio.KindSeek, Op: "mp3 seek", Err: err}
	}

	r.atEnd = false
	r.pos = uint64(off) / mp3FrameBytes
	seeked.ActualTS = r.pos
	return seeked, nil
}

func (r *mp3Reader) Close() error {
	return r.src.Close()
}
