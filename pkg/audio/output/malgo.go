//go:build malgo

// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo; the device callback pulls 16-bit frames from the active sink
package output

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/musics-player/musics-go/pkg/audio"
	log "github.com/sirupsen/logrus"
)

// Malgo output device using the malgo/miniaudio library
type Malgo struct {
	spec     audio.SignalSpec
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	active   atomic.Pointer[PullSink]
	buf      []int16
	once     sync.Once
}

// NewMalgo initializes a miniaudio context and starts a playback device
func NewMalgo(spec audio.SignalSpec) (*Malgo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	m := &Malgo{spec: spec, malgoCtx: ctx}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(spec.Channels)
	deviceConfig.SampleRate = uint32(spec.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(pOutput, _ []byte, frameCount uint32) {
			m.dataCallback(pOutput, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		m.freeContext()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		m.freeContext()
		return nil, fmt.Errorf("failed to start device: %w", err)
	}

	m.device = device
	log.Infof("Audio output initialized: %dHz, %d channels (malgo)", spec.SampleRate, spec.Channels)
	return m, nil
}

func (m *Malgo) dataCallback(pOutput []byte, frameCount uint32) {
	total := int(frameCount) * m.spec.Channels
	if cap(m.buf) < total {
		m.buf = make([]int16, total)
	}
	samples := m.buf[:total]

	n := 0
	if s := m.active.Load(); s != nil && !s.IsPaused() {
		n = s.Fill(samples)
	}
	clear(samples[n:])

	for i, sample := range samples {
		pOutput[i*2] = byte(sample)
		pOutput[i*2+1] = byte(sample >> 8)
	}
}

// Spec returns the device format
func (m *Malgo) Spec() audio.SignalSpec {
	return m.spec
}

// NewSink creates a sink and makes it the one the device plays
func (m *Malgo) NewSink() (Sink, error) {
	s := NewPullSink(m.spec)
	m.active.Store(s)
	return s, nil
}

// Close stops the device and releases the context
func (m *Malgo) Close() error {
	m.once.Do(func() {
		if err := m.device.Stop(); err != nil {
			log.Warnf("malgo device stop error: %v", err)
		}
		m.device.Uninit()
		m.freeContext()
	})
	return nil
}

func (m *Malgo) freeContext() {
	if err := m.malgoCtx.Uninit(); err != nil {
		log.Warnf("malgo context uninit error: %v", err)
	}
	m.malgoCtx.Free()
}
