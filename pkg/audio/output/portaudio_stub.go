//go:build !portaudio

// ABOUTME: PortAudio placeholder for builds without the portaudio tag
// ABOUTME: output.New reports the backend as unavailable
package output

import (
	"fmt"

	"github.com/musics-player/musics-go/pkg/audio"
)

// PortAudio output device (stub)
type PortAudio struct{}

// NewPortAudio always fails without the portaudio build tag
func NewPortAudio(spec audio.SignalSpec) (*PortAudio, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

// Spec returns the zero format
func (p *PortAudio) Spec() audio.SignalSpec {
	return audio.SignalSpec{}
}

// NewSink fails without the portaudio build tag
func (p *PortAudio) NewSink() (Sink, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

// Close is a no-op
func (p *PortAudio) Close() error {
	return nil
}
