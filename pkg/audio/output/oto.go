// ABOUTME: Oto-based audio output implementation
// ABOUTME: One process-wide oto context, one oto player per sink reading from a PullSink
package output

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/musics-player/musics-go/pkg/audio"
	log "github.com/sirupsen/logrus"
)

// oto only allows one context per process
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoSpec audio.SignalSpec
	otoErr  error
)

// Oto output device using the oto library
type Oto struct {
	ctx  *oto.Context
	spec audio.SignalSpec
}

// NewOto opens the oto device. Later calls reuse the first context.
func NewOto(spec audio.SignalSpec) (*Oto, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   spec.SampleRate,
			ChannelCount: spec.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-readyChan

		otoCtx = ctx
		otoSpec = spec
		log.Infof("Audio output initialized: %dHz, %d channels", spec.SampleRate, spec.Channels)
	})
	if otoErr != nil {
		return nil, otoErr
	}

	if spec != otoSpec {
		log.Warnf("oto doesn't support reinitialization (%dHz %dch requested), continuing with %dHz %dch",
			spec.SampleRate, spec.Channels, otoSpec.SampleRate, otoSpec.Channels)
	}

	return &Oto{ctx: otoCtx, spec: otoSpec}, nil
}

// Spec returns the context format
func (o *Oto) Spec() audio.SignalSpec {
	return o.spec
}

// NewSink creates a sink with its own oto player
func (o *Oto) NewSink() (Sink, error) {
	s := &otoSink{PullSink: NewPullSink(o.spec)}
	s.player = o.ctx.NewPlayer(&sinkReader{sink: s.PullSink})
	return s, nil
}

// Close suspends the context. It cannot be recreated within the process.
func (o *Oto) Close() error {
	return o.ctx.Suspend()
}

type otoSink struct {
	*PullSink
	mu     sync.Mutex
	player *oto.Player
}

func (s *otoSink) Play() {
	s.PullSink.Play()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Play()
	}
}

func (s *otoSink) Pause() {
	s.PullSink.Pause()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.player != nil {
		s.player.Pause()
	}
}

func (s *otoSink) Stop() {
	s.mu.Lock()
	player := s.player
	s.player = nil
	s.mu.Unlock()

	if player != nil {
		player.Pause()
	}
	s.PullSink.Stop()
	if player != nil {
		if err := player.Close(); err != nil {
			log.Warnf("oto player close error: %v", err)
		}
	}
}

// sinkReader encodes PullSink output as signed 16-bit little-endian bytes
type sinkReader struct {
	sink *PullSink
	buf  []int16
}

func (r *sinkReader) Read(p []byte) (int, error) {
	n := len(p) / 2
	if cap(r.buf) < n {
		r.buf = make([]int16, n)
	}

	got := r.sink.Fill(r.buf[:n])
	if got == 0 {
		return 0, io.EOF
	}

	for i, sample := range r.buf[:got] {
		binary.LittleEndian.PutUint16(p[i*2:], uint16(sample))
	}
	return got * 2, nil
}
