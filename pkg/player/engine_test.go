// ABOUTME: Tests for the playback engine
// ABOUTME: Plays generated WAV files on the null device and checks the query surface
package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/musics-player/musics-go/internal/audiotest"
	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/output"
	"github.com/spf13/afero"
)

const waitTimeout = 3 * time.Second

func eventually(t *testing.T, cond func() bool, msg string, args ...any) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf(msg, args...)
}

func newTestEngine(t *testing.T, config EngineConfig) (*Engine, afero.Fs) {
	t.Helper()
	if config.Fs == nil {
		config.Fs = afero.NewMemMapFs()
	}
	config.Device = output.NewNull(mono8k)

	e, err := NewEngine(config)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, config.Fs
}

func writeTone(t *testing.T, fs afero.Fs, path string, d time.Duration) {
	t.Helper()
	tone := audiotest.Tone{SampleRate: 8000, Channels: 1, BitDepth: 16, Duration: d, Frequency: 440}
	if err := audiotest.WriteWAV(fs, path, tone); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
}

func TestNewEngineRequiresDevice(t *testing.T) {
	if _, err := NewEngine(EngineConfig{}); err == nil {
		t.Error("expected an error without a device")
	}
}

func TestEngineNothingLoaded(t *testing.T) {
	e, _ := newTestEngine(t, EngineConfig{})

	e.Seek(5 * time.Second)
	e.Resume()
	e.Pause()
	e.Resume()

	if e.SongDuration() != 0 {
		t.Errorf("expected zero duration, got %v", e.SongDuration())
	}
	if e.TimeElapsed() != 0 {
		t.Errorf("expected zero elapsed, got %v", e.TimeElapsed())
	}
	if e.IsPlaying() {
		t.Error("expected not playing")
	}
	if !e.Empty() {
		t.Error("expected empty")
	}
	if !e.SongFinishedPlaying() {
		t.Error("expected an unloaded, unpaused engine to report finished")
	}
	if e.Current() != "" {
		t.Errorf("expected no current file, got %q", e.Current())
	}
}

func TestEngineSeventeenSecondFile(t *testing.T) {
	e, fs := newTestEngine(t, EngineConfig{})
	writeTone(t, fs, "/music/long.wav", 17*time.Second)

	if err := e.PlayFile("/music/long.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	if e.SongDuration() != 17*time.Second {
		t.Fatalf("expected 17s duration, got %v", e.SongDuration())
	}

	eventually(t, func() bool {
		el := e.TimeElapsed()
		return el > 0 && el < time.Second
	}, "expected playback to start, elapsed %v", e.TimeElapsed())

	e.Seek(10 * time.Second)
	if e.TimeElapsed() != 10*time.Second {
		t.Errorf("expected 10s right after seek, got %v", e.TimeElapsed())
	}
	eventually(t, func() bool {
		el := e.TimeElapsed()
		return el > 10*time.Second && el < 11*time.Second
	}, "expected playback past 10s, elapsed %v", e.TimeElapsed())

	e.Seek(20 * time.Second)
	eventually(t, e.Empty, "expected seeking past the end to finish the song")
	if e.TimeElapsed() != e.SongDuration() {
		t.Errorf("expected elapsed %v to equal duration %v", e.TimeElapsed(), e.SongDuration())
	}
	if !e.SongFinishedPlaying() {
		t.Error("expected song finished")
	}
}

func TestEnginePauseResume(t *testing.T) {
	e, fs := newTestEngine(t, EngineConfig{})
	writeTone(t, fs, "/a.wav", 5*time.Second)

	if err := e.PlayFile("/a.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	if !e.IsPlaying() {
		t.Fatal("expected playing after PlayFile")
	}
	eventually(t, func() bool { return e.TimeElapsed() > 0 }, "playback never started")

	e.Pause()
	if e.IsPlaying() {
		t.Error("expected not playing right after pause")
	}
	if e.SongFinishedPlaying() {
		t.Error("a paused song is not finished")
	}

	// Let any in-flight pull settle, then the position must hold
	time.Sleep(30 * time.Millisecond)
	paused := e.TimeElapsed()
	time.Sleep(100 * time.Millisecond)
	if e.TimeElapsed() != paused {
		t.Errorf("elapsed moved while paused: %v -> %v", paused, e.TimeElapsed())
	}

	e.Resume()
	if !e.IsPlaying() {
		t.Error("expected playing right after resume")
	}
	eventually(t, func() bool { return e.TimeElapsed() > paused }, "playback did not continue after resume")
	if e.TimeElapsed() < paused {
		t.Error("elapsed went backwards across pause")
	}
}

func TestEngineFinishedWhilePaused(t *testing.T) {
	e, fs := newTestEngine(t, EngineConfig{})
	writeTone(t, fs, "/short.wav", 100*time.Millisecond)

	if err := e.PlayFile("/short.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	eventually(t, e.SongFinishedPlaying, "short song never finished")

	if e.IsPlaying() {
		t.Error("a finished song is not playing")
	}

	e.Pause()
	if !e.Empty() {
		t.Error("expected empty")
	}
	if e.SongFinishedPlaying() {
		t.Error("expected finished to be false while paused")
	}
}

func TestEngineSecondFileReplacesSession(t *testing.T) {
	e, fs := newTestEngine(t, EngineConfig{})
	writeTone(t, fs, "/first.wav", 17*time.Second)
	writeTone(t, fs, "/second.wav", 3*time.Second)

	if err := e.PlayFile("/first.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	e.Seek(12 * time.Second)

	if err := e.PlayFile("/second.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	if e.SongDuration() != 3*time.Second {
		t.Errorf("expected the new duration, got %v", e.SongDuration())
	}
	if e.TimeElapsed() >= time.Second {
		t.Errorf("expected the new position, got %v", e.TimeElapsed())
	}
	if e.Current() != "/second.wav" {
		t.Errorf("expected /second.wav, got %q", e.Current())
	}
	if !e.IsPlaying() {
		t.Error("expected the new file to be playing")
	}
}

func TestEngineFailedOpenKeepsSession(t *testing.T) {
	e, fs := newTestEngine(t, EngineConfig{})
	writeTone(t, fs, "/good.wav", 5*time.Second)
	if err := afero.WriteFile(fs, "/notes.wav", []byte("these are not audio samples"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := afero.WriteFile(fs, "/header.wav", audiotest.HeaderOnlyWAV(), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if err := e.PlayFile("/good.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}

	tests := []struct {
		path   string
		target error
	}{
		{"/missing.wav", ErrIO},
		{"/notes.wav", ErrUnsupportedFormat},
		{"/header.wav", ErrNoAudioTrack},
	}
	for _, tt := range tests {
		err := e.PlayFile(tt.path)
		if !errors.Is(err, tt.target) {
			t.Errorf("%s: expected %v, got %v", tt.path, tt.target, err)
		}
		var perr *Error
		if errors.As(err, &perr) && perr.Path != tt.path {
			t.Errorf("expected error path %s, got %s", tt.path, perr.Path)
		}
	}

	if e.Current() != "/good.wav" {
		t.Errorf("expected the good session to survive, got %q", e.Current())
	}
	if e.SongDuration() != 5*time.Second {
		t.Errorf("expected 5s duration, got %v", e.SongDuration())
	}
	if !e.IsPlaying() {
		t.Error("expected the good session to keep playing")
	}
}

func TestEngineVolume(t *testing.T) {
	e, fs := newTestEngine(t, EngineConfig{Volume: 0.3})
	writeTone(t, fs, "/a.wav", time.Second)

	if e.Volume() != 0.3 {
		t.Errorf("expected initial volume 0.3, got %v", e.Volume())
	}

	e.SetVolume(0.5)
	if err := e.PlayFile("/a.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	if e.Volume() != 0.5 {
		t.Errorf("expected volume to carry over, got %v", e.Volume())
	}

	e.SetVolume(2)
	if e.Volume() != 1 {
		t.Errorf("expected volume clamped to 1, got %v", e.Volume())
	}
	e.SetVolume(-1)
	if e.Volume() != 0 {
		t.Errorf("expected volume clamped to 0, got %v", e.Volume())
	}
}

func TestEngineStop(t *testing.T) {
	e, fs := newTestEngine(t, EngineConfig{})
	writeTone(t, fs, "/a.wav", 5*time.Second)

	if err := e.PlayFile("/a.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	e.Stop()

	if !e.Empty() || e.IsPlaying() {
		t.Error("expected an empty, idle engine after stop")
	}
	if e.SongDuration() != 0 || e.TimeElapsed() != 0 {
		t.Errorf("expected zero queries after stop, got %v / %v", e.SongDuration(), e.TimeElapsed())
	}
	if e.Current() != "" {
		t.Errorf("expected no current file, got %q", e.Current())
	}

	// The engine stays usable
	if err := e.PlayFile("/a.wav"); err != nil {
		t.Fatalf("failed to play after stop: %v", err)
	}
	if !e.IsPlaying() {
		t.Error("expected playing again")
	}
}

func TestEngineCallbacks(t *testing.T) {
	var (
		mu       sync.Mutex
		started  []time.Duration
		reasons  []EndReason
		endPaths []string
	)
	e, fs := newTestEngine(t, EngineConfig{
		OnSessionStart: func(path string, d time.Duration) {
			mu.Lock()
			defer mu.Unlock()
			started = append(started, d)
		},
		OnStreamEnd: func(path string, r EndReason) {
			mu.Lock()
			defer mu.Unlock()
			reasons = append(reasons, r)
			endPaths = append(endPaths, path)
		},
	})
	writeTone(t, fs, "/short.wav", 100*time.Millisecond)

	if err := e.PlayFile("/short.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}

	eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reasons) == 1
	}, "expected a stream end callback")

	mu.Lock()
	defer mu.Unlock()
	if len(started) != 1 || started[0] != 100*time.Millisecond {
		t.Errorf("expected one session start with 100ms, got %v", started)
	}
	if reasons[0] != EndOfStream || endPaths[0] != "/short.wav" {
		t.Errorf("expected natural end of /short.wav, got %v %v", reasons, endPaths)
	}
}

func TestEngineConvertsToDeviceFormat(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := audiotest.WriteWAV(fs, "/stereo.wav", audiotest.DefaultTone); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	dev := output.NewNull(audio.SignalSpec{SampleRate: 16000, Channels: 1})
	e, err := NewEngine(EngineConfig{Device: dev, Fs: fs})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer e.Close()

	if err := e.PlayFile("/stereo.wav"); err != nil {
		t.Fatalf("failed to play: %v", err)
	}
	eventually(t, func() bool { return e.TimeElapsed() > 100*time.Millisecond }, "playback did not advance")
}
