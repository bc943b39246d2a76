// ABOUTME: Sample rate conversion for interleaved int16 streams
// ABOUTME: Used by the output converter when a file's rate differs from the device
// Package resample converts interleaved int16 frames between sample rates by
// linear interpolation. A Resampler keeps the last input frame between calls,
// so a stream can be fed in arbitrary chunks.
//
//	r := resample.New(44100, 48000, 2)
//	written, consumed := r.Resample(in, out)
package resample
