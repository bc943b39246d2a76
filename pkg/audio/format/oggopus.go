// ABOUTME: Ogg Opus reader
// ABOUTME: Parses OpusHead, times packets from their TOC and seeks by page granule
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/decode"
)

var (
	opusHeadMagic = []byte("OpusHead")
	opusTagsMagic = []byte("OpusTags")
)

// oggOpusReader hands out raw Opus packets from an Ogg stream
type oggOpusReader struct {
	singleTrack
	src       audio.MediaSource
	ogg       *oggStream
	preSkip   uint64
	dataStart int64  // offset of the first audio page
	granule   uint64 // samples decoded so far, including pre-skip
	atEnd     bool
}

func newOggOpusReader(src audio.MediaSource) (*oggOpusReader, error) {
	ogg := newOggStream(src)

	head, err := ogg.nextPacket()
	if err != nil {
		return nil, audio.DecodeError("ogg opus", fmt.Errorf("failed to read OpusHead: %w", err))
	}
	if len(head) < 19 || string(head[:8]) != string(opusHeadMagic) {
		return nil, audio.DecodeError("ogg opus", errors.New("invalid OpusHead"))
	}

	channels := int(head[9])
	preSkip := uint64(binary.LittleEndian.Uint16(head[10:12]))
	if family := head[18]; family != 0 && channels > 2 {
		return nil, audio.UnsupportedError("ogg opus", "unsupported channel mapping family %d with %d channels", family, channels)
	}

	tags, err := ogg.nextPacket()
	if err != nil || len(tags) < 8 || string(tags[:8]) != string(opusTagsMagic) {
		return nil, audio.DecodeError("ogg opus", errors.New("missing OpusTags"))
	}

	r := &oggOpusReader{
		src:       src,
		ogg:       ogg,
		preSkip:   preSkip,
		dataStart: ogg.offset,
	}

	var frames uint64
	if last, err := lastGranule(src, ogg.serial); err == nil && uint64(last) > preSkip {
		frames = uint64(last) - preSkip
	}
	if _, err := src.Seek(r.dataStart, io.SeekStart); err != nil {
		return nil, audio.IOError("ogg opus", err)
	}

	r.track = audio.Track{
		ID: ogg.serial,
		Params: audio.CodecParams{
			Codec:       decode.CodecOpus,
			SampleRate:  decode.OpusSampleRate,
			Channels:    channels,
			BitDepth:    16,
			CodecHeader: head,
			NFrames:     frames,
			TimeBase:    audio.NewTimeBase(decode.OpusSampleRate),
			Delay:       int(preSkip),
		},
	}
	return r, nil
}

func (r *oggOpusReader) NextPacket() (*audio.Packet, error) {
	if r.atEnd {
		return nil, io.EOF
	}

	data, err := r.ogg.nextPacket()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.atEnd = true
			return nil, io.EOF
		}
		return nil, audio.IOError("ogg opus", err)
	}

	dur := uint64(opusPacketFrames(data))
	ts := uint64(0)
	if r.granule > r.preSkip {
		ts = r.granule - r.preSkip
	}
	r.granule += dur

	return &audio.Packet{
		TrackID:  r.track.ID,
		TS:       ts,
		Duration: dur,
		Data:     data,
	}, nil
}

// Seek scans page headers for the first page ending at or after the target
func (r *oggOpusReader) Seek(to time.Duration) (SeekedTo, error) {
	ts := r.track.Params.TimeBase.CalcTimestamp(to)
	seeked := SeekedTo{TrackID: r.track.ID, RequiredTS: ts}

	if total := r.track.Params.NFrames; total > 0 && ts >= total {
		r.atEnd = true
		seeked.ActualTS = total
		return seeked, nil
	}

	target := int64(ts + r.preSkip)
	if err := r.ogg.seekTo(r.dataStart); err != nil {
		return SeekedTo{}, audio.IOError("ogg opus seek", err)
	}

	prev := int64(0)
	for {
		page, err := r.ogg.skipPage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.atEnd = true
				seeked.ActualTS = ts
				return seeked, nil
			}
			return SeekedTo{}, audio.IOError("ogg opus seek", err)
		}
		if page.serial != r.ogg.serial || page.granule < 0 {
			continue
		}
		if page.granule >= target {
			if err := r.ogg.seekTo(page.offset); err != nil {
				return SeekedTo{}, audio.IOError("ogg opus seek", err)
			}
			break
		}
		prev = page.granule
	}

	r.atEnd = false
	r.granule = uint64(prev)
	if r.granule > r.preSkip {
		seeked.ActualTS = r.granule - r.preSkip
	}
	return seeked, nil
}

func (r *oggOpusReader) Close() error {
	return r.src.Close()
}

// opusPacketFrames returns the number of 48kHz frames in an Opus packet
func opusPacketFrames(pkt []byte) int {
	if len(pkt) == 0 {
		return 0
	}

	toc := pkt[0]
	config := toc >> 3
	var size int // frames per Opus frame at 48kHz
	switch {
	case config < 12: // SILK: 10, 20, 40, 60ms
		size = []int{480, 960, 1920, 2880}[config%4]
	case config < 16: // Hybrid: 10, 20ms
		size = []int{480, 960}[config%2]
	default: // CELT: 2.5, 5, 10, 20ms
		size = []int{120, 240, 480, 960}[config%4]
	}

	count := 1
	switch toc & 0x03 {
	case 1, 2:
		count = 2
	case 3:
		if len(pkt) < 2 {
			return 0
		}
		count = int(pkt[1] & 0x3F)
	}
	return size * count
}
