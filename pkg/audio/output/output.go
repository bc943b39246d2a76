// ABOUTME: Audio output interface definitions
// ABOUTME: Common interfaces for output devices, sinks and pull-based sample sources
package output

import (
	"fmt"

	"github.com/musics-player/musics-go/pkg/audio"
)

// Source is a finite, pull-based stream of interleaved samples
type Source interface {
	// Next returns the next sample, or false at the end of the stream
	Next() (int16, bool)

	// Spec describes the block the last sample returned by Next came from
	Spec() audio.SignalSpec
}

// Device is one connection to an audio output backend
type Device interface {
	// Spec returns the format the device was opened with
	Spec() audio.SignalSpec

	// NewSink creates a fresh, empty sink on the device
	NewSink() (Sink, error)

	// Close releases the device
	Close() error
}

// Sink plays the sources appended to it, one after another
type Sink interface {
	Append(src Source)
	Play()
	Pause()
	IsPaused() bool

	// Empty reports whether the sink has no more samples to play
	Empty() bool

	Volume() float32
	SetVolume(v float32)

	// Stop drops all sources. No source is pulled from after Stop returns.
	Stop()
}

// Backend names accepted by New
const (
	BackendOto       = "oto"
	BackendBeep      = "beep"
	BackendPortAudio = "portaudio"
	BackendMalgo     = "malgo"
	BackendNull      = "null"
)

// Backends lists the backend names accepted by New
var Backends = []string{BackendOto, BackendBeep, BackendPortAudio, BackendMalgo, BackendNull}

// New opens the named backend
func New(backend string, spec audio.SignalSpec) (Device, error) {
	if !spec.Valid() {
		return nil, fmt.Errorf("invalid output format: %dHz %d channels", spec.SampleRate, spec.Channels)
	}

	switch backend {
	case BackendOto, "":
		dev, err := NewOto(spec)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case BackendBeep:
		dev, err := NewBeep(spec)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case BackendPortAudio:
		dev, err := NewPortAudio(spec)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case BackendMalgo:
		dev, err := NewMalgo(spec)
		if err != nil {
			return nil, err
		}
		return dev, nil
	case BackendNull:
		return NewNull(spec), nil
	}
	return nil, fmt.Errorf("unknown output backend: %s", backend)
}
