// ABOUTME: Pull-based sink shared by every output backend
// ABOUTME: Queues sources, converts them to the device format and applies software volume
package output

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/musics-player/musics-go/pkg/audio"
)

// PullSink implements the Sink state machine. Backends drive it by calling Fill
// from their audio callback or player goroutine.
type PullSink struct {
	spec audio.SignalSpec

	// mu guards queue and is held for the whole of a Fill, so Stop waits for
	// an in-flight pull to finish.
	mu    sync.Mutex
	queue []*converter

	paused     atomic.Bool
	drained    atomic.Bool
	volumeBits atomic.Uint32
	softVolume bool
}

// NewPullSink creates an empty, unpaused sink producing samples in spec
func NewPullSink(spec audio.SignalSpec) *PullSink {
	s := &PullSink{spec: spec, softVolume: true}
	s.drained.Store(true)
	s.volumeBits.Store(math.Float32bits(1.0))
	return s
}

// Spec returns the device format produced by Fill
func (s *PullSink) Spec() audio.SignalSpec {
	return s.spec
}

// Append queues src after any sources already in the sink
func (s *PullSink) Append(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, newConverter(src, s.spec))
	s.drained.Store(false)
}

// Play resumes pulling
func (s *PullSink) Play() {
	s.paused.Store(false)
}

// Pause stops pulling until Play is called
func (s *PullSink) Pause() {
	s.paused.Store(true)
}

// IsPaused reports whether the sink is paused
func (s *PullSink) IsPaused() bool {
	return s.paused.Load()
}

// Empty reports whether every appended source has been played out
func (s *PullSink) Empty() bool {
	return s.drained.Load()
}

// Volume returns the current volume multiplier
func (s *PullSink) Volume() float32 {
	return math.Float32frombits(s.volumeBits.Load())
}

// SetVolume sets the volume multiplier, clamped to [0, 1]
func (s *PullSink) SetVolume(v float32) {
	s.volumeBits.Store(math.Float32bits(clampVolume(v)))
}

// Stop drops every queued source
func (s *PullSink) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.drained.Store(true)
}

// Fill writes up to len(dst) device-format samples and returns the count.
// A count short of len(dst) means the sink ran dry.
func (s *PullSink) Fill(dst []int16) int {
	dst = dst[:len(dst)-len(dst)%s.spec.Channels]

	s.mu.Lock()
	written := 0
	for written < len(dst) && len(s.queue) > 0 {
		written += s.queue[0].read(dst[written:])
		if written < len(dst) {
			s.queue[0] = nil
			s.queue = s.queue[1:]
		}
	}
	if len(s.queue) == 0 {
		s.drained.Store(true)
	}
	s.mu.Unlock()

	if s.softVolume {
		applyVolume(dst[:written], s.Volume())
	}
	return written
}

func clampVolume(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// applyVolume scales samples in place with clipping protection
func applyVolume(samples []int16, volume float32) {
	if volume >= 1 {
		return
	}
	multiplier := float64(volume)
	for i, sample := range samples {
		scaled := int32(float64(sample) * multiplier)

		if scaled > math.MaxInt16 {
			scaled = math.MaxInt16
		} else if scaled < math.MinInt16 {
			scaled = math.MinInt16
		}

		samples[i] = int16(scaled)
	}
}
