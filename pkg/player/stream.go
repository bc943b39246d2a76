// ABOUTME: Pull-based sample stream over a demuxer and codec decoder
// ABOUTME: Skips corrupt packets within a budget, tracks elapsed time and applies seeks
package player

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/decode"
	"github.com/musics-player/musics-go/pkg/audio/format"
	log "github.com/sirupsen/logrus"
)

// MaxDecodeErrors is how many consecutive corrupt packets are skipped before
// the stream gives up
const MaxDecodeErrors = 3

// Placeholder durations for streams that cannot compute their length.
// A missing frame count wins when both are absent.
const (
	UnknownDuration         = 99 * time.Second
	UnknownTimeBaseDuration = 199 * time.Second
)

// SupportedExtensions lists the file extensions worth handing to PlayFile
var SupportedExtensions = []string{"flac", "wav", "mp3", "ogg", "opus", "oga"}

// EndReason says why a stream stopped producing samples
type EndReason int

const (
	EndOfStream EndReason = iota
	EndDecodeErrors
	EndReadError
)

func (r EndReason) String() string {
	switch r {
	case EndOfStream:
		return "end of stream"
	case EndDecodeErrors:
		return "too many decode errors"
	case EndReadError:
		return "read error"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

var errDecodeBudget = errors.New("too many consecutive decode errors")

// streamHooks are called on the producing goroutine
type streamHooks struct {
	onDecodeError func(error)
	onEnd         func(EndReason)
}

// StreamDecoder presents a media source as a finite sequence of interleaved
// int16 samples. It is not safe for concurrent use; controllers go through
// its Control.
type StreamDecoder struct {
	reader  format.Reader
	decoder decode.Decoder
	track   audio.Track
	control *Control
	hooks   streamHooks

	block        *audio.SampleBlock
	spec         audio.SignalSpec
	decodeErrors int
	done         bool
	closeOnce    sync.Once
}

// NewStreamDecoder probes src and decodes its first packet. The decoder owns
// src from here on, including on failure.
func NewStreamDecoder(src audio.MediaSource) (*StreamDecoder, error) {
	reader, err := format.Probe(src)
	if err != nil {
		src.Close()
		return nil, classify(err)
	}

	track := reader.DefaultTrack()
	if track == nil {
		reader.Close()
		return nil, &Error{Kind: NoAudioTrack}
	}

	dec, err := decode.New(track.Params)
	if err != nil {
		reader.Close()
		return nil, classify(err)
	}

	return newStreamDecoder(reader, dec, *track)
}

func newStreamDecoder(reader format.Reader, dec decode.Decoder, track audio.Track) (*StreamDecoder, error) {
	duration, known := trackDuration(track.Params)
	s := &StreamDecoder{
		reader:  reader,
		decoder: dec,
		track:   track,
		control: newControl(duration, known),
	}

	if err := s.nextBlock(); err != nil {
		s.Close()
		switch {
		case errors.Is(err, io.EOF):
			return nil, &Error{Kind: DecodeInitError, Err: errors.New("no audio packets")}
		case errors.Is(err, errDecodeBudget):
			return nil, &Error{Kind: DecodeInitError, Err: err}
		}
		return nil, classify(err)
	}

	return s, nil
}

// trackDuration is n_frames × time_base, or a placeholder
func trackDuration(p audio.CodecParams) (time.Duration, bool) {
	if p.NFrames == 0 {
		return UnknownDuration, false
	}
	if p.TimeBase.IsZero() {
		return UnknownTimeBaseDuration, false
	}
	return p.TimeBase.CalcTime(p.NFrames), true
}

// Control returns the session's shared handle
func (s *StreamDecoder) Control() *Control {
	return s.control
}

// Track returns the track being played
func (s *StreamDecoder) Track() audio.Track {
	return s.track
}

// TotalDuration returns the stream length
func (s *StreamDecoder) TotalDuration() time.Duration {
	return s.control.TotalDuration()
}

// Spec describes the block the last sample came from
func (s *StreamDecoder) Spec() audio.SignalSpec {
	return s.spec
}

// Next returns the next sample, or false once the stream has ended
func (s *StreamDecoder) Next() (int16, bool) {
	if s.done {
		return 0, false
	}

	// Seeks land between frames so channels stay aligned
	if s.atFrameBoundary() {
		if t, ok := s.control.takeSeek(); ok {
			s.seek(t)
			if s.done {
				return 0, false
			}
		}
	}

	for s.block.Remaining() == 0 {
		if err := s.nextBlock(); err != nil {
			s.end(endReason(err))
			return 0, false
		}
	}

	return s.block.Next()
}

func (s *StreamDecoder) atFrameBoundary() bool {
	if s.block == nil || s.block.Spec.Channels <= 1 {
		return true
	}
	return s.block.Remaining()%s.block.Spec.Channels == 0
}

// nextBlock decodes packets until one yields samples
func (s *StreamDecoder) nextBlock() error {
	for {
		pkt, err := s.reader.NextPacket()
		if err != nil {
			return err
		}
		if pkt.TrackID != s.track.ID {
			continue
		}

		block, err := s.decoder.Decode(pkt)
		if err != nil {
			if !audio.IsDecodeError(err) {
				return err
			}
			s.decodeErrors++
			if s.hooks.onDecodeError != nil {
				s.hooks.onDecodeError(err)
			}
			if s.decodeErrors > MaxDecodeErrors {
				return fmt.Errorf("%w: %w", errDecodeBudget, err)
			}
			continue
		}
		s.decodeErrors = 0

		if tb := s.track.Params.TimeBase; !tb.IsZero() {
			s.control.advance(tb.CalcTime(pkt.TS))
		}

		if block.Remaining() == 0 {
			continue
		}
		s.block = block
		s.spec = block.Spec
		return nil
	}
}

func (s *StreamDecoder) seek(t time.Duration) {
	s.block = nil
	s.decodeErrors = 0

	if _, err := s.reader.Seek(t); err != nil {
		if audio.KindOf(err) == audio.KindSeek {
			s.end(EndOfStream)
			return
		}
		log.Warnf("seek to %v failed: %v", t, err)
		s.end(EndReadError)
		return
	}
	s.decoder.Reset()
}

func endReason(err error) EndReason {
	switch {
	case errors.Is(err, io.EOF):
		return EndOfStream
	case errors.Is(err, errDecodeBudget):
		return EndDecodeErrors
	}
	return EndReadError
}

// end stops the stream and releases the demuxer from the producing goroutine
func (s *StreamDecoder) end(reason EndReason) {
	if s.done {
		return
	}
	s.done = true
	s.block = nil
	s.control.finish()
	if reason != EndOfStream {
		log.Debugf("stream ended early: %s", reason)
	}
	if s.hooks.onEnd != nil {
		s.hooks.onEnd(reason)
	}
	s.Close()
}

// Close releases the demuxer, media source and codec decoder
func (s *StreamDecoder) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if derr := s.decoder.Close(); derr != nil {
			err = derr
		}
		if rerr := s.reader.Close(); rerr != nil {
			err = rerr
		}
	})
	return err
}
