// ABOUTME: Audio type definitions
// ABOUTME: Defines tracks, codec parameters, packets and decoded sample blocks
package audio

import (
	"io"
	"time"
)

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23
)

// MediaSource is a seekable byte stream over one media file
type MediaSource interface {
	io.ReadSeeker
	io.Closer
}

// SignalSpec describes the shape of a block of decoded samples
type SignalSpec struct {
	SampleRate int
	Channels   int
}

// Valid reports whether the spec can describe real audio
func (s SignalSpec) Valid() bool {
	return s.SampleRate > 0 && s.Channels > 0
}

// TimeBase converts timestamps (in units of Numer/Denom seconds) to wall time
type TimeBase struct {
	Numer uint32
	Denom uint32
}

// NewTimeBase returns the time base of one frame at the given sample rate
func NewTimeBase(sampleRate int) TimeBase {
	if sampleRate <= 0 {
		return TimeBase{}
	}
	return TimeBase{Numer: 1, Denom: uint32(sampleRate)}
}

// IsZero reports whether the time base is unknown
func (tb TimeBase) IsZero() bool {
	return tb.Numer == 0 || tb.Denom == 0
}

// CalcTime converts a timestamp into a duration
func (tb TimeBase) CalcTime(ts uint64) time.Duration {
	if tb.IsZero() {
		return 0
	}
	// Split into whole seconds and remainder to keep the product in range
	n := ts * uint64(tb.Numer)
	secs := n / uint64(tb.Denom)
	rem := n % uint64(tb.Denom)
	return time.Duration(secs)*time.Second + time.Duration(rem*uint64(time.Second)/uint64(tb.Denom))
}

// CalcTimestamp converts a duration into a timestamp, rounding down
func (tb TimeBase) CalcTimestamp(d time.Duration) uint64 {
	if tb.IsZero() || d <= 0 {
		return 0
	}
	secs := uint64(d / time.Second)
	frac := uint64(d % time.Second)
	whole := secs * uint64(tb.Denom) / uint64(tb.Numer)
	part := frac * uint64(tb.Denom) / uint64(time.Second) / uint64(tb.Numer)
	return whole + part
}

// CodecParams describes an encoded audio track
type CodecParams struct {
	Codec       string
	SampleRate  int
	Channels    int
	BitDepth    int
	Float       bool   // PCM samples are IEEE floats
	CodecHeader []byte // For Opus ID headers, etc.
	NFrames     uint64 // Total frames, 0 when unknown
	TimeBase    TimeBase
	Delay       int // Priming frames to discard at stream start
}

// Spec returns the signal spec the codec parameters announce
func (p CodecParams) Spec() SignalSpec {
	return SignalSpec{SampleRate: p.SampleRate, Channels: p.Channels}
}

// Track is one elementary audio stream in a container
type Track struct {
	ID     uint32
	Params CodecParams
}

// Packet is one unit of encoded audio read from a container
type Packet struct {
	TrackID  uint32
	TS       uint64 // Timestamp in track time-base units
	Duration uint64 // Frames covered, 0 when unknown
	Data     []byte

	// Native carries a backend-specific handle for codecs that read
	// directly from the demuxer's bitstream (FLAC frames)
	Native any
}

// SampleBlock holds the interleaved samples decoded from one packet
type SampleBlock struct {
	Spec    SignalSpec
	Samples []int16
	pos     int
}

// NewSampleBlock wraps decoded samples
func NewSampleBlock(spec SignalSpec, samples []int16) *SampleBlock {
	return &SampleBlock{Spec: spec, Samples: samples}
}

// Next returns the next unread sample
func (b *SampleBlock) Next() (int16, bool) {
	if b == nil || b.pos >= len(b.Samples) {
		return 0, false
	}
	s := b.Samples[b.pos]
	b.pos++
	return s, true
}

// Remaining returns the number of unread samples
func (b *SampleBlock) Remaining() int {
	if b == nil {
		return 0
	}
	return len(b.Samples) - b.pos
}

// Frames returns the number of interleaved frames in the block
func (b *SampleBlock) Frames() int {
	if b == nil || b.Spec.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Spec.Channels
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// ScaleToInt16 converts a signed sample of the given bit width to int16
func ScaleToInt16(sample int32, bits int) int16 {
	switch {
	case bits == 16:
		return int16(sample)
	case bits > 16:
		return int16(sample >> (bits - 16))
	case bits > 0:
		return int16(sample << (16 - bits))
	}
	return 0
}

// FloatToInt16 converts a [-1, 1] float sample to int16 with clipping
func FloatToInt16(sample float64) int16 {
	if sample >= 1 {
		return 32767
	}
	if sample <= -1 {
		return -32768
	}
	return int16(sample * 32767)
}

// SampleFrom24Bit converts 24-bit packed bytes to int32 (little-endian)
func SampleFrom24Bit(b [3]byte) int32 {
	val := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	// Sign extend from 24-bit to 32-bit
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
