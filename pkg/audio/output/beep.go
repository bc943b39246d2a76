// ABOUTME: Beep speaker output implementation
// ABOUTME: Each sink is a beep.Ctrl over an effects.Volume over a PullSink streamer
package output

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/musics-player/musics-go/pkg/audio"
	log "github.com/sirupsen/logrus"
)

// beepBuffer is the speaker latency
const beepBuffer = 100 * time.Millisecond

var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

// Beep output device on the beep speaker. The speaker is always stereo.
type Beep struct {
	spec audio.SignalSpec
}

// NewBeep initializes the speaker once per process
func NewBeep(spec audio.SignalSpec) (*Beep, error) {
	speakerOnce.Do(func() {
		sr := beep.SampleRate(spec.SampleRate)
		if err := speaker.Init(sr, sr.N(beepBuffer)); err != nil {
			speakerErr = fmt.Errorf("failed to initialize speaker: %w", err)
			return
		}
		speakerRate = sr
		log.Infof("Audio output initialized: %dHz, 2 channels (beep)", spec.SampleRate)
	})
	if speakerErr != nil {
		return nil, speakerErr
	}

	return &Beep{spec: audio.SignalSpec{SampleRate: int(speakerRate), Channels: 2}}, nil
}

// Spec returns the speaker format
func (b *Beep) Spec() audio.SignalSpec {
	return b.spec
}

// NewSink creates a sink; it joins the speaker mixer on first Play
func (b *Beep) NewSink() (Sink, error) {
	pull := NewPullSink(b.spec)
	pull.softVolume = false

	s := &beepSink{PullSink: pull}
	s.volume = &effects.Volume{
		Streamer: &beepStreamer{sink: pull},
		Base:     2,
	}
	s.ctrl = &beep.Ctrl{Streamer: s.volume}
	return s, nil
}

// Close clears the mixer
func (b *Beep) Close() error {
	speaker.Clear()
	return nil
}

type beepSink struct {
	*PullSink
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	started bool
}

func (s *beepSink) Play() {
	s.PullSink.Play()
	speaker.Lock()
	s.ctrl.Paused = false
	start := !s.started && s.ctrl.Streamer != nil
	s.started = true
	speaker.Unlock()

	if start {
		speaker.Play(s.ctrl)
	}
}

func (s *beepSink) Pause() {
	s.PullSink.Pause()
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *beepSink) SetVolume(v float32) {
	s.PullSink.SetVolume(v)
	v = s.PullSink.Volume()

	speaker.Lock()
	defer speaker.Unlock()
	if v == 0 {
		s.volume.Silent = true
		return
	}
	s.volume.Silent = false
	s.volume.Volume = math.Log2(float64(v))
}

func (s *beepSink) Stop() {
	speaker.Lock()
	s.ctrl.Streamer = nil
	s.started = true
	speaker.Unlock()
	s.PullSink.Stop()
}

// beepStreamer adapts a stereo PullSink to beep.Streamer
type beepStreamer struct {
	sink *PullSink
	buf  []int16
}

func (b *beepStreamer) Stream(samples [][2]float64) (int, bool) {
	n := len(samples) * 2
	if cap(b.buf) < n {
		b.buf = make([]int16, n)
	}

	got := b.sink.Fill(b.buf[:n]) / 2
	for i := 0; i < got; i++ {
		samples[i][0] = float64(b.buf[i*2]) / 32768.0
		samples[i][1] = float64(b.buf[i*2+1]) / 32768.0
	}
	return got, got > 0
}

func (b *beepStreamer) Err() error {
	return nil
}
