// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Streams int16 frames through linear interpolation, carrying state across chunks
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64 // fractional read position relative to lastFrame
	lastFrame  []int16 // final frame of the previous chunk
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastFrame:  make([]int16, channels),
	}
}

// Passthrough reports whether the rates match
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// Resample converts interleaved input at inputRate into output at outputRate.
// It returns the number of samples written and the number consumed.
// Input that cannot be interpolated yet is kept for the next call.
func (r *Resampler) Resample(input []int16, output []int16) (written, consumed int) {
	ch := r.channels
	inputFrames := len(input) / ch
	outputFrames := len(output) / ch
	if inputFrames == 0 || outputFrames == 0 {
		return 0, 0
	}

	if !r.primed {
		copy(r.lastFrame, input[:ch])
		input = input[ch:]
		inputFrames--
		consumed = ch
		r.primed = true
	}

	// Frame i of the virtual stream is lastFrame for i == 0, input[i-1] after
	frame := func(i int) []int16 {
		if i == 0 {
			return r.lastFrame
		}
		return input[(i-1)*ch : i*ch]
	}

	outIdx := 0
	for outIdx < outputFrames {
		idx := int(r.position)
		if idx+1 > inputFrames {
			break
		}

		frac := r.position - float64(idx)
		a, b := frame(idx), frame(idx+1)
		for c := 0; c < ch; c++ {
			v := float64(a[c])*(1.0-frac) + float64(b[c])*frac
			output[outIdx*ch+c] = int16(v)
		}

		outIdx++
		r.position += r.ratio
	}

	// Drop the input frames we moved past, keeping the last one for interpolation
	used := min(int(r.position), inputFrames)
	if used > 0 {
		copy(r.lastFrame, frame(used))
		r.position -= float64(used)
	}
	consumed += used * ch

	return outIdx * ch, consumed
}

// Reset drops the interpolation state so the next chunk starts a new signal
func (r *Resampler) Reset() {
	r.position = 0.0
	r.primed = false
	for i := range r.lastFrame {
		r.lastFrame[i] = 0
	}
}

// InputSamplesNeeded is how many input samples produce outputSamples, plus
// the one lookahead frame interpolation needs
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames)*r.ratio) + 1
	return inputFrames * r.channels
}
