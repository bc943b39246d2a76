// ABOUTME: Codec decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for PCM, Opus, FLAC
// Package decode provides codec decoders that turn packets into sample blocks.
//
// Supports: PCM (8/16/24/32-bit integer, 32-bit float), Opus, FLAC
//
// All decoders implement the Decoder interface and output int16 interleaved
// samples. MP3 and Vorbis are decoded by their container readers and reach
// this package as PCM packets.
//
// Example:
//
//	decoder, err := decode.New(track.Params)
//	block, err := decoder.Decode(packet)
package decode
