// ABOUTME: Container probing and demuxing package
// ABOUTME: Provides the Reader interface and readers for FLAC, WAV, MP3, Ogg Opus and Ogg Vorbis
// Package format sniffs media containers by content and exposes their audio
// track as a sequence of packets.
//
// Probe never looks at file extensions. Readers own their media source once
// Probe succeeds and close it in Close.
//
// Example:
//
//	r, err := format.Probe(file)
//	track := r.DefaultTrack()
//	pkt, err := r.NextPacket()
package format
