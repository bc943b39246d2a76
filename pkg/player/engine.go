// ABOUTME: Playback engine owning the output device and one replaceable sink
// ABOUTME: Builds a session per file and answers playback queries from its control
package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/musics-player/musics-go/pkg/audio/output"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// EngineConfig holds engine configuration
type EngineConfig struct {
	// Device is the output the engine plays on. The engine closes it.
	Device output.Device

	// Fs is where PlayFile opens paths (default: the OS filesystem)
	Fs afero.Fs

	// Volume is the initial volume in [0, 1] (default: 1)
	Volume float32

	// OnSessionStart is called after a file starts playing
	OnSessionStart func(path string, duration time.Duration)

	// OnStreamEnd is called on the audio goroutine when a stream stops
	// producing samples. It must not block.
	OnStreamEnd func(path string, reason EndReason)

	// OnDecodeError is called on the audio goroutine for each skipped packet.
	// It must not block.
	OnDecodeError func(path string, err error)
}

type session struct {
	path    string
	stream  *StreamDecoder
	control *Control
}

// Engine plays one file at a time
type Engine struct {
	config EngineConfig
	device output.Device
	fs     afero.Fs

	// ops serializes commands that replace the sink
	ops sync.Mutex

	mu      sync.Mutex
	sink    output.Sink
	session *session
	volume  float32
}

// NewEngine creates an engine with an empty sink on the configured device
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Device == nil {
		return nil, errors.New("engine requires an output device")
	}
	if config.Fs == nil {
		config.Fs = afero.NewOsFs()
	}
	if config.Volume == 0 {
		config.Volume = 1.0
	}

	sink, err := config.Device.NewSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create sink: %w", err)
	}

	e := &Engine{
		config: config,
		device: config.Device,
		fs:     config.Fs,
		sink:   sink,
	}
	e.volume = clampVolume(config.Volume)
	sink.SetVolume(e.volume)
	return e, nil
}

// PlayFile replaces the current session with one playing path. If the file
// cannot be opened the current session keeps playing.
func (e *Engine) PlayFile(path string) error {
	e.ops.Lock()
	defer e.ops.Unlock()

	f, err := e.fs.Open(path)
	if err != nil {
		return &Error{Kind: IoError, Path: path, Err: err}
	}

	stream, err := NewStreamDecoder(f)
	if err != nil {
		perr := classify(err)
		perr.Path = path
		return perr
	}
	stream.hooks = e.hooksFor(path)

	sink, err := e.device.NewSink()
	if err != nil {
		stream.Close()
		return fmt.Errorf("failed to create sink: %w", err)
	}

	next := &session{path: path, stream: stream, control: stream.Control()}

	e.mu.Lock()
	oldSink, oldSession := e.sink, e.session
	e.sink, e.session = sink, next
	sink.SetVolume(e.volume)
	e.mu.Unlock()

	e.release(oldSink, oldSession)

	sink.Append(stream)
	sink.Play()

	log.Infof("Playing %s (%v)", path, stream.TotalDuration())
	if e.config.OnSessionStart != nil {
		e.config.OnSessionStart(path, stream.TotalDuration())
	}
	return nil
}

func (e *Engine) hooksFor(path string) streamHooks {
	var hooks streamHooks
	if cb := e.config.OnDecodeError; cb != nil {
		hooks.onDecodeError = func(err error) { cb(path, err) }
	}
	if cb := e.config.OnStreamEnd; cb != nil {
		hooks.onEnd = func(reason EndReason) { cb(path, reason) }
	}
	return hooks
}

// release stops a replaced sink, then closes its stream. Stop returns only
// once the sink has stopped pulling.
func (e *Engine) release(sink output.Sink, s *session) {
	if sink != nil {
		sink.Stop()
	}
	if s != nil {
		if err := s.stream.Close(); err != nil {
			log.Warnf("failed to close %s: %v", s.path, err)
		}
	}
}

// Stop drops the current session and leaves a fresh, empty sink
func (e *Engine) Stop() {
	e.ops.Lock()
	defer e.ops.Unlock()

	sink, err := e.device.NewSink()
	if err != nil {
		log.Warnf("failed to create sink: %v", err)
	}

	e.mu.Lock()
	oldSink, oldSession := e.sink, e.session
	if sink != nil {
		e.sink = sink
		sink.SetVolume(e.volume)
	} else {
		oldSink.Stop()
		oldSink = nil
	}
	e.session = nil
	e.mu.Unlock()

	e.release(oldSink, oldSession)
}

// Close stops playback and closes the device
func (e *Engine) Close() error {
	e.ops.Lock()
	defer e.ops.Unlock()

	e.mu.Lock()
	sink, s := e.sink, e.session
	e.session = nil
	e.mu.Unlock()

	e.release(sink, s)
	return e.device.Close()
}

// Pause pauses the sink
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink.Pause()
}

// Resume resumes the sink. With nothing loaded it does nothing audible.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink.Play()
}

// IsPlaying reports whether the sink is neither paused nor empty
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.sink.IsPaused() && !e.sink.Empty()
}

// IsPaused reports whether the sink is paused
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink.IsPaused()
}

// SongFinishedPlaying reports whether the sink ran dry while not paused
func (e *Engine) SongFinishedPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink.Empty() && !e.sink.IsPaused()
}

// Empty reports whether the sink has nothing left to play
func (e *Engine) Empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sink.Empty()
}

func (e *Engine) control() *Control {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	return e.session.control
}

// Seek moves the current session to t. It does nothing when nothing is loaded.
func (e *Engine) Seek(t time.Duration) {
	if c := e.control(); c != nil {
		c.Seek(t)
	}
}

// SongDuration returns the current session's duration, or zero
func (e *Engine) SongDuration() time.Duration {
	if c := e.control(); c != nil {
		return c.TotalDuration()
	}
	return 0
}

// TimeElapsed returns the current session's position, or zero
func (e *Engine) TimeElapsed() time.Duration {
	if c := e.control(); c != nil {
		return c.TimeElapsed()
	}
	return 0
}

// Current returns the path of the loaded file, or ""
func (e *Engine) Current() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return ""
	}
	return e.session.path
}

// Volume returns the volume in [0, 1]
func (e *Engine) Volume() float32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetVolume sets the volume, clamped to [0, 1]. It carries over to later files.
func (e *Engine) SetVolume(v float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume = clampVolume(v)
	e.sink.SetVolume(e.volume)
}

func clampVolume(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
