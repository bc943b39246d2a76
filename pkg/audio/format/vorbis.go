// ABOUTME: Ogg Vorbis reader
// ABOUTME: Decodes Vorbis with beep/vorbis and hands out 16-bit PCM packets
package format

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/vorbis"
	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/decode"
)

var vorbisHeadMagic = []byte("\x01vorbis")

const vorbisFramesPerPacket = 1024

// vorbisReader wraps a beep Vorbis streamer, which both demuxes and decodes
type vorbisReader struct {
	singleTrack
	streamer beep.StreamSeekCloser
	channels int
	frames   [][2]float64
	atEnd    bool
}

func newVorbisReader(src audio.MediaSource) (*vorbisReader, error) {
	streamer, format, err := vorbis.Decode(src)
	if err != nil {
		return nil, audio.DecodeError("vorbis", fmt.Errorf("failed to create decoder: %w", err))
	}

	channels := min(format.NumChannels, 2)
	rate := int(format.SampleRate)
	var total uint64
	if n := streamer.Len(); n > 0 {
		total = uint64(n)
	}

	return &vorbisReader{
		streamer: streamer,
		channels: channels,
		frames:   make([][2]float64, vorbisFramesPerPacket),
		singleTrack: singleTrack{track: audio.Track{
			ID: 0,
			Params: audio.CodecParams{
				Codec:      decode.CodecPCM,
				SampleRate: rate,
				Channels:   channels,
				BitDepth:   16,
				NFrames:    total,
				TimeBase:   audio.NewTimeBase(rate),
			},
		}},
	}, nil
}

func (r *vorbisReader) NextPacket() (*audio.Packet, error) {
	if r.atEnd {
		return nil, io.EOF
	}

	ts := uint64(r.streamer.Position())
	n, ok := r.streamer.Stream(r.frames)
	if n == 0 || !ok {
		r.atEnd = true
		if err := r.streamer.Err(); err != nil {
			return nil, audio.DecodeError("vorbis", err)
		}
		if n == 0 {
			return nil, io.EOF
		}
	}

	data := make([]byte, n*r.channels*2)
	for i := 0; i < n; i++ {
		for ch := 0; ch < r.channels; ch++ {
			s := audio.FloatToInt16(r.frames[i][ch])
			binary.LittleEndian.PutUint16(data[(i*r.channels+ch)*2:], uint16(s))
		}
	}

	return &audio.Packet{
		TrackID:  r.track.ID,
		TS:       ts,
		Duration: uint64(n),
		Data:     data,
	}, nil
}

func (r *vorbisReader) Seek(to time.Duration) (SeekedTo, error) {
	ts := r.track.Params.TimeBase.CalcTimestamp(to)
	seeked := SeekedTo{TrackID: r.track.ID, RequiredTS: ts}

	if total := r.track.Params.NFrames; total > 0 && ts >= total {
		r.atEnd = true
		seeked.ActualTS = total
		return seeked, nil
	}

	if err := r.streamer.Seek(int(ts)); err != nil {
		return SeekedTo{}, &audio.Error{Kind: audio.KindSeek, Op: "vorbis seek", Err: err}
	}

	r.atEnd = false
	seeked.ActualTS = uint64(r.streamer.Position())
	return seeked, nil
}

// Close closes the streamer, which closes the media source
func (r *vorbisReader) Close() error {
	return r.streamer.Close()
}
