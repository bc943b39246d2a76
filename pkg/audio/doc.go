// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines tracks, packets, sample blocks, time bases and sample conversions
// Package audio provides the types shared by demuxers, codec decoders and outputs.
//
//   - Track and CodecParams: what a container announces about its audio stream
//   - Packet: one unit of encoded audio
//   - SampleBlock: the int16 interleaved samples decoded from one packet
//   - TimeBase: converts packet timestamps to wall time
//
// Backend failures are classified with ErrorKind so that callers can tell a
// recoverable corrupt packet from an I/O failure without importing the
// backend library.
//
// Example:
//
//	tb := audio.NewTimeBase(44100)
//	elapsed := tb.CalcTime(packet.TS)
package audio
