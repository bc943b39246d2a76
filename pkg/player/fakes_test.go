// ABOUTME: In-memory demuxer and codec doubles for stream tests
// ABOUTME: Packets carry their samples directly; a 0xFF payload marks a corrupt packet
package player

import (
	"errors"
	"io"
	"time"

	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/format"
)

var corrupt = []byte{0xFF}

var (
	mono8k   = audio.SignalSpec{SampleRate: 8000, Channels: 1}
	stereo8k = audio.SignalSpec{SampleRate: 8000, Channels: 2}
)

// fakeBlock is the decoded content a packet stands for
type fakeBlock struct {
	spec    audio.SignalSpec
	samples []int16
}

type fakeEntry struct {
	pkt *audio.Packet
	err error
}

func good(ts uint64, samples ...int16) fakeEntry {
	return goodSpec(ts, mono8k, samples...)
}

func goodSpec(ts uint64, spec audio.SignalSpec, samples ...int16) fakeEntry {
	return fakeEntry{pkt: &audio.Packet{TS: ts, Native: fakeBlock{spec: spec, samples: samples}}}
}

func bad(ts uint64) fakeEntry {
	return fakeEntry{pkt: &audio.Packet{TS: ts, Data: corrupt}}
}

func readFailure() fakeEntry {
	return fakeEntry{err: audio.IOError("read", errors.New("disk gone"))}
}

var _ format.Reader = (*fakeReader)(nil)

// fakeReader serves a fixed packet list
type fakeReader struct {
	track   audio.Track
	entries []fakeEntry
	pos     int
	seeks   []time.Duration
	seekErr error
	closed  bool
}

func newFakeReader(params audio.CodecParams, entries ...fakeEntry) *fakeReader {
	for _, e := range entries {
		if e.pkt != nil && e.pkt.TrackID == 0 {
			e.pkt.TrackID = 1
		}
	}
	return &fakeReader{track: audio.Track{ID: 1, Params: params}, entries: entries}
}

func (r *fakeReader) Tracks() []audio.Track {
	return []audio.Track{r.track}
}

func (r *fakeReader) DefaultTrack() *audio.Track {
	t := r.track
	return &t
}

func (r *fakeReader) NextPacket() (*audio.Packet, error) {
	if r.pos >= len(r.entries) {
		return nil, io.EOF
	}
	e := r.entries[r.pos]
	r.pos++
	return e.pkt, e.err
}

// Seek lands on the first packet at or after the target
func (r *fakeReader) Seek(to time.Duration) (format.SeekedTo, error) {
	r.seeks = append(r.seeks, to)
	if r.seekErr != nil {
		return format.SeekedTo{}, r.seekErr
	}
	ts := r.track.Params.TimeBase.CalcTimestamp(to)
	r.pos = len(r.entries)
	for i, e := range r.entries {
		if e.pkt != nil && e.pkt.TS >= ts {
			r.pos = i
			break
		}
	}
	return format.SeekedTo{TrackID: r.track.ID, RequiredTS: ts, ActualTS: ts}, nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

// fakeDecoder returns the block a packet carries
type fakeDecoder struct {
	resets int
	closed bool
}

func (d *fakeDecoder) Decode(pkt *audio.Packet) (*audio.SampleBlock, error) {
	if len(pkt.Data) > 0 && pkt.Data[0] == corrupt[0] {
		return nil, audio.DecodeError("fake", errors.New("corrupt packet"))
	}
	blk := pkt.Native.(fakeBlock)
	return audio.NewSampleBlock(blk.spec, append([]int16(nil), blk.samples...)), nil
}

func (d *fakeDecoder) Reset() {
	d.resets++
}

func (d *fakeDecoder) Close() error {
	d.closed = true
	return nil
}

// params8k is a mono 8kHz track of the given length in frames
func params8k(frames uint64) audio.CodecParams {
	return audio.CodecParams{
		Codec:      "fake",
		SampleRate: 8000,
		Channels:   1,
		NFrames:    frames,
		TimeBase:   audio.NewTimeBase(8000),
	}
}

// drain pulls every remaining sample
func drain(s *StreamDecoder) []int16 {
	var out []int16
	for {
		v, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
