// ABOUTME: Shared playback state between the producing decoder and its controllers
// ABOUTME: Elapsed time, total duration and a last-write-wins pending seek
package player

import (
	"sync"
	"time"
)

// Control is the handle a controller uses to observe and seek one session.
// It stays readable after its session ends.
type Control struct {
	duration      time.Duration
	durationKnown bool

	// mu guards the fields below together so a producer update never
	// overwrites a seek target it has not consumed yet
	mu       sync.Mutex
	elapsed  time.Duration
	seekTo   time.Duration
	pending  bool
	finished bool
}

func newControl(duration time.Duration, known bool) *Control {
	return &Control{duration: duration, durationKnown: known}
}

// Seek requests a jump to t. TimeElapsed reports t right away.
func (c *Control) Seek(t time.Duration) {
	if t < 0 {
		t = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.finished {
		// Nobody is left to consume the seek
		if c.durationKnown && t > c.duration {
			t = c.duration
		}
		c.elapsed = t
		return
	}

	c.elapsed = t
	c.seekTo = t
	c.pending = true
}

// TimeElapsed returns the playback position
func (c *Control) TimeElapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// TotalDuration returns the stream length, or a placeholder when the stream
// does not declare one
func (c *Control) TotalDuration() time.Duration {
	return c.duration
}

// takeSeek consumes the pending seek
func (c *Control) takeSeek() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return 0, false
	}
	c.pending = false
	c.elapsed = c.seekTo
	return c.seekTo, true
}

// advance records the timestamp of a decoded packet
func (c *Control) advance(elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		c.elapsed = elapsed
	}
}

// finish marks the end of the stream and clamps elapsed to the duration
func (c *Control) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finished = true
	c.pending = false
	if c.durationKnown && c.elapsed > c.duration {
		c.elapsed = c.duration
	}
}
