// ABOUTME: Null output device that discards audio in real time
// ABOUTME: Used for headless playback and tests; a ticker pulls from every live sink
package output

import (
	"context"
	"sync"
	"time"

	"github.com/musics-player/musics-go/pkg/audio"
)

// nullTick is how often the null device pulls
const nullTick = 10 * time.Millisecond

// Null discards samples at the rate a real device would consume them
type Null struct {
	spec   audio.SignalSpec
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	sinks map[*nullSink]struct{}
}

// NewNull starts a null device
func NewNull(spec audio.SignalSpec) *Null {
	ctx, cancel := context.WithCancel(context.Background())
	n := &Null{
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
		sinks:  make(map[*nullSink]struct{}),
	}

	n.wg.Add(1)
	go n.run()
	return n
}

// Spec returns the device format
func (n *Null) Spec() audio.SignalSpec {
	return n.spec
}

// NewSink registers a sink with the device
func (n *Null) NewSink() (Sink, error) {
	s := &nullSink{PullSink: NewPullSink(n.spec), device: n}
	n.mu.Lock()
	n.sinks[s] = struct{}{}
	n.mu.Unlock()
	return s, nil
}

// Close stops the pull loop
func (n *Null) Close() error {
	n.cancel()
	n.wg.Wait()
	return nil
}

func (n *Null) run() {
	defer n.wg.Done()

	frames := max(int(time.Duration(n.spec.SampleRate)*nullTick/time.Second), 1)
	buf := make([]int16, frames*n.spec.Channels)

	ticker := time.NewTicker(nullTick)
	defer ticker.Stop()

	for {
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
			for _, s := range n.snapshot() {
				if !s.IsPaused() && !s.Empty() {
					s.Fill(buf)
				}
			}
		}
	}
}

func (n *Null) snapshot() []*nullSink {
	n.mu.Lock()
	defer n.mu.Unlock()
	sinks := make([]*nullSink, 0, len(n.sinks))
	for s := range n.sinks {
		sinks = append(sinks, s)
	}
	return sinks
}

type nullSink struct {
	*PullSink
	device *Null
}

func (s *nullSink) Stop() {
	s.PullSink.Stop()
	s.device.mu.Lock()
	delete(s.device.sinks, s)
	s.device.mu.Unlock()
}
