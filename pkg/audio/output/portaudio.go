//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform audio output; the stream callback pulls from the active sink
package output

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/musics-player/musics-go/pkg/audio"
	log "github.com/sirupsen/logrus"
)

// PortAudio output device
type PortAudio struct {
	spec   audio.SignalSpec
	stream *portaudio.Stream
	active atomic.Pointer[PullSink]
	once   sync.Once
}

// NewPortAudio initializes PortAudio and starts the default output stream
func NewPortAudio(spec audio.SignalSpec) (*PortAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	p := &PortAudio{spec: spec}
	stream, err := portaudio.OpenDefaultStream(0, spec.Channels, float64(spec.SampleRate), 0, p.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	log.Infof("Audio output initialized: %dHz, %d channels (portaudio)", spec.SampleRate, spec.Channels)
	return p, nil
}

func (p *PortAudio) callback(out []int16) {
	n := 0
	if s := p.active.Load(); s != nil && !s.IsPaused() {
		n = s.Fill(out)
	}
	clear(out[n:])
}

// Spec returns the stream format
func (p *PortAudio) Spec() audio.SignalSpec {
	return p.spec
}

// NewSink creates a sink and makes it the one the stream plays
func (p *PortAudio) NewSink() (Sink, error) {
	s := NewPullSink(p.spec)
	p.active.Store(s)
	return s, nil
}

// Close stops the stream and terminates PortAudio
func (p *PortAudio) Close() error {
	var err error
	p.once.Do(func() {
		if err = p.stream.Stop(); err != nil {
			return
		}
		if err = p.stream.Close(); err != nil {
			return
		}
		err = portaudio.Terminate()
	})
	return err
}
