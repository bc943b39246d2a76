// ABOUTME: Tests for file inspection
// ABOUTME: Checks track details and the error kinds for bad inputs
package player

import (
	"errors"
	"testing"
	"time"

	"github.com/musics-player/musics-go/internal/audiotest"
	"github.com/spf13/afero"
)

func TestInspect(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTone(t, fs, "/music/tone.wav", 2*time.Second)

	info, err := Inspect(fs, "/music/tone.wav")
	if err != nil {
		t.Fatalf("failed to inspect: %v", err)
	}
	if !info.DurationKnown || info.Duration != 2*time.Second {
		t.Errorf("expected a known 2s duration, got %v known=%v", info.Duration, info.DurationKnown)
	}
	if info.Track.Params.SampleRate != 8000 || info.Track.Params.Channels != 1 {
		t.Errorf("unexpected params %+v", info.Track.Params)
	}
}

func TestInspectErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/notes.txt", []byte("just some text, not audio at all"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if err := afero.WriteFile(fs, "/empty.wav", audiotest.HeaderOnlyWAV(), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tests := []struct {
		path     string
		expected error
	}{
		{"/missing.flac", ErrIO},
		{"/notes.txt", ErrUnsupportedFormat},
		{"/empty.wav", ErrNoAudioTrack},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := Inspect(fs, tt.path)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			var perr *Error
			if !errors.As(err, &perr) || perr.Path != tt.path {
				t.Errorf("expected the path on the error, got %v", err)
			}
		})
	}
}
