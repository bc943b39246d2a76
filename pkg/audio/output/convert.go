// ABOUTME: Converts a source's per-block signal spec to the device format
// ABOUTME: Remixes channels and resamples with the linear resampler
package output

import (
	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/resample"
)

// chunkFrames is how many source frames are pulled per refill
const chunkFrames = 256

// pendingSample is the first sample of a block whose spec differs from the current one
type pendingSample struct {
	sample int16
	spec   audio.SignalSpec
	ok     bool
}

// converter pulls whole frames from a Source and emits device-format samples
type converter struct {
	src    Source
	out    audio.SignalSpec
	inSpec audio.SignalSpec
	rs     *resample.Resampler
	in     []int16 // source-rate samples already remixed to out.Channels
	frame  []int16
	carry  pendingSample
	done   bool
}

func newConverter(src Source, out audio.SignalSpec) *converter {
	return &converter{
		src: src,
		out: out,
		in:  make([]int16, 0, (chunkFrames+2)*out.Channels),
	}
}

// read fills dst with device-format samples and returns how many were written.
// A short count means the source is exhausted.
func (c *converter) read(dst []int16) int {
	written := 0
	for written < len(dst) {
		n, consumed := c.convert(dst[written:])
		written += n
		c.in = c.in[consumed:]
		if n > 0 || consumed > 0 {
			continue
		}
		if !c.pull(len(dst) - written) {
			break
		}
	}
	return written
}

func (c *converter) convert(dst []int16) (written, consumed int) {
	if c.rs == nil || len(c.in) == 0 {
		return 0, 0
	}
	if c.rs.Passthrough() {
		n := min(len(dst), len(c.in))
		n -= n % c.out.Channels
		copy(dst, c.in[:n])
		return n, n
	}
	return c.rs.Resample(c.in, dst)
}

// pull reads frames of one spec from the source: enough to produce need
// output samples, capped at chunkFrames
func (c *converter) pull(need int) bool {
	if c.carry.ok && c.carry.spec != c.inSpec {
		// Whatever is left cannot be interpolated across a format change
		c.in = c.in[:0]
		c.setSpec(c.carry.spec)
	}
	if c.done && !c.carry.ok {
		return false
	}

	// Compact leftovers to the front of the buffer
	c.in = append(c.in[:0:0], c.in...)

	limit := c.framesFor(need)
	got := 0
	for got < limit {
		var first int16
		var spec audio.SignalSpec
		if c.carry.ok {
			first, spec = c.carry.sample, c.carry.spec
			c.carry.ok = false
		} else {
			s, ok := c.src.Next()
			if !ok {
				c.done = true
				break
			}
			first, spec = s, c.src.Spec()
		}

		if !spec.Valid() {
			c.done = true
			break
		}
		if spec != c.inSpec {
			c.carry = pendingSample{sample: first, spec: spec, ok: true}
			break
		}

		if cap(c.frame) < spec.Channels {
			c.frame = make([]int16, spec.Channels)
		}
		frame := c.frame[:spec.Channels]
		frame[0] = first
		complete := true
		for ch := 1; ch < spec.Channels; ch++ {
			s, ok := c.src.Next()
			if !ok {
				c.done = true
				complete = false
				break
			}
			frame[ch] = s
		}
		if !complete {
			break
		}

		c.in = remix(c.in, frame, c.out.Channels)
		got++
	}

	return got > 0 || c.carry.ok
}

func (c *converter) framesFor(need int) int {
	if c.rs == nil || c.rs.Passthrough() || need <= 0 {
		return chunkFrames
	}
	return max(1, min(chunkFrames, c.rs.InputSamplesNeeded(need)/c.out.Channels))
}

// setSpec keeps the resampler across a channel change at the same rate,
// dropping only its interpolation state
func (c *converter) setSpec(spec audio.SignalSpec) {
	sameRate := c.rs != nil && c.inSpec.SampleRate == spec.SampleRate
	c.inSpec = spec
	if sameRate {
		c.rs.Reset()
		return
	}
	c.rs = resample.New(spec.SampleRate, c.out.SampleRate, c.out.Channels)
}

// remix appends frame to dst with outCh channels
func remix(dst []int16, frame []int16, outCh int) []int16 {
	inCh := len(frame)
	switch {
	case inCh == outCh:
		return append(dst, frame...)
	case outCh == 1:
		sum := 0
		for _, s := range frame {
			sum += int(s)
		}
		return append(dst, int16(sum/inCh))
	default:
		for ch := 0; ch < outCh; ch++ {
			dst = append(dst, frame[ch%inCh])
		}
		return dst
	}
}
