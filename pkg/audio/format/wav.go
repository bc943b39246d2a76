// ABOUTME: WAV container reader
// ABOUTME: Parses RIFF headers with go-audio/wav and packetizes the PCM data chunk
package format

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"
	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/decode"
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// packetDuration is the span of audio carried by one PCM packet
const packetDuration = 20 * time.Millisecond

// wavReader reads raw PCM frames from the data chunk of a WAV file
type wavReader struct {
	singleTrack
	src        audio.MediaSource
	dataStart  int64
	blockAlign int
	frames     uint64 // total frames in the data chunk
	pos        uint64 // next frame to read
	perPacket  int
	buf        []byte
	hasTrack   bool
}

func newWAVReader(src audio.MediaSource) (*wavReader, error) {
	dec := wav.NewDecoder(src)
	if !dec.IsValidFile() {
		return nil, audio.DecodeError("wav", errors.New("invalid wav header"))
	}

	var float bool
	switch dec.WavAudioFormat {
	case wavFormatPCM, wavFormatExtensible:
	case wavFormatFloat:
		float = true
	default:
		return nil, audio.UnsupportedError("wav", "unsupported wav format tag %#x", dec.WavAudioFormat)
	}

	r := &wavReader{src: src}

	if err := dec.FwdToPCM(); err != nil {
		if dec.PCMChunk == nil {
			// Header but no data chunk: nothing to play
			return r, nil
		}
		return nil, audio.DecodeError("wav", fmt.Errorf("failed to find data chunk: %w", err))
	}

	dataStart, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, audio.IOError("wav", err)
	}
	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, audio.IOError("wav", err)
	}
	if _, err := src.Seek(dataStart, io.SeekStart); err != nil {
		return nil, audio.IOError("wav", err)
	}

	// Streamed files often carry a bogus chunk size, trust the file length instead
	size := int64(dec.PCMSize)
	if size <= 0 || dataStart+size > end {
		size = end - dataStart
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	sampleRate := int(dec.SampleRate)

	r.dataStart = dataStart
	r.blockAlign = channels * ((bitDepth + 7) / 8)
	if r.blockAlign == 0 {
		return nil, audio.DecodeError("wav", errors.New("zero block alignment"))
	}
	r.frames = uint64(size) / uint64(r.blockAlign)
	r.perPacket = max(int(time.Duration(sampleRate)*packetDuration/time.Second), 64)
	r.buf = make([]byte, r.perPacket*r.blockAlign)
	r.hasTrack = true
	r.track = audio.Track{
		ID: 0,
		Params: audio.CodecParams{
			Codec:      decode.CodecPCM,
			SampleRate: sampleRate,
			Channels:   channels,
			BitDepth:   bitDepth,
			Float:      float,
			NFrames:    r.frames,
			TimeBase:   audio.NewTimeBase(sampleRate),
		},
	}

	return r, nil
}

func (r *wavReader) Tracks() []audio.Track {
	if !r.hasTrack {
		return nil
	}
	return r.singleTrack.Tracks()
}

func (r *wavReader) DefaultTrack() *audio.Track {
	if !r.hasTrack {
		return nil
	}
	return r.singleTrack.DefaultTrack()
}

// NextPacket reads up to one packet of whole frames
func (r *wavReader) NextPacket() (*audio.Packet, error) {
	if !r.hasTrack || r.pos >= r.frames {
		return nil, io.EOF
	}

	want := min(uint64(r.perPacket), r.frames-r.pos)
	buf := r.buf[:int(want)*r.blockAlign]
	n, err := io.ReadFull(r.src, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, audio.IOError("wav", err)
	}

	got := n / r.blockAlign
	if got == 0 {
		return nil, io.EOF
	}

	data := make([]byte, got*r.blockAlign)
	copy(data, buf)
	pkt := &audio.Packet{
		TrackID:  r.track.ID,
		TS:       r.pos,
		Duration: uint64(got),
		Data:     data,
	}
	r.pos += uint64(got)
	if got < int(want) {
		// Truncated file, stop after this packet
		r.frames = r.pos
	}
	return pkt, nil
}

// Seek jumps straight to the frame for the requested time
func (r *wavReader) Seek(to time.Duration) (SeekedTo, error) {
	if !r.hasTrack {
		return SeekedTo{}, audio.ErrSeekOutOfRange
	}

	ts := r.track.Params.TimeBase.CalcTimestamp(to)
	seeked := SeekedTo{TrackID: r.track.ID, RequiredTS: ts}
	if ts >= r.frames {
		r.pos = r.frames
		seeked.ActualTS = r.frames
		return seeked, nil
	}

	if _, err := r.src.Seek(r.dataStart+int64(ts)*int64(r.blockAlign), io.SeekStart); err != nil {
		return SeekedTo{}, audio.IOError("wav seek", err)
	}
	r.pos = ts
	seeked.ActualTS = ts
	return seeked, nil
}

func (r *wavReader) Close() error {
	return r.src.Close()
}
