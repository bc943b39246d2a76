//go:build !malgo

// ABOUTME: Malgo stub when miniaudio support is not compiled in
// ABOUTME: Provides compile-time placeholder when built without the malgo tag
package output

import (
	"fmt"

	"github.com/musics-player/musics-go/pkg/audio"
)

// Malgo output device (stub)
type Malgo struct{}

// NewMalgo always fails without the malgo build tag
func NewMalgo(spec audio.SignalSpec) (*Malgo, error) {
	return nil, fmt.Errorf("malgo support not enabled (build with -tags malgo)")
}

// Spec returns the zero format
func (m *Malgo) Spec() audio.SignalSpec {
	return audio.SignalSpec{}
}

// NewSink fails without the malgo build tag
func (m *Malgo) NewSink() (Sink, error) {
	return nil, fmt.Errorf("malgo support not enabled (build with -tags malgo)")
}

// Close is a no-op
func (m *Malgo) Close() error {
	return nil
}
