// ABOUTME: Tests for the construction error taxonomy
// ABOUTME: Checks sentinel matching and the backend kind translation
package player

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/musics-player/musics-go/pkg/audio"
)

func TestErrorIs(t *testing.T) {
	tests := []struct {
		kind    ErrorKind
		matches []error
		misses  []error
	}{
		{UnsupportedFormat, []error{ErrUnsupportedFormat}, []error{ErrNoAudioTrack, ErrIO, ErrDecodeInit}},
		{NoAudioTrack, []error{ErrNoAudioTrack, ErrUnsupportedFormat}, []error{ErrIO, ErrDecodeInit}},
		{IoError, []error{ErrIO}, []error{ErrUnsupportedFormat, ErrDecodeInit}},
		{DecodeInitError, []error{ErrDecodeInit}, []error{ErrIO, ErrUnsupportedFormat}},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &Error{Kind: tt.kind, Path: "/a.flac"})
			for _, target := range tt.matches {
				if !errors.Is(err, target) {
					t.Errorf("expected %v to match %v", err, target)
				}
			}
			for _, target := range tt.misses {
				if errors.Is(err, target) {
					t.Errorf("expected %v not to match %v", err, target)
				}
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"io", audio.IOError("read", errors.New("eio")), IoError},
		{"decode", audio.DecodeError("frame", errors.New("bad crc")), DecodeInitError},
		{"seek", audio.ErrSeekOutOfRange, DecodeInitError},
		{"unsupported", audio.UnsupportedError("probe", "nope"), UnsupportedFormat},
		{"unclassified", errors.New("mystery"), IoError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if got.Kind != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got.Kind)
			}
			if !errors.Is(got, tt.err) {
				t.Error("expected the backend error to stay in the chain")
			}
		})
	}
}

func TestBackendKindsAllMapped(t *testing.T) {
	for kind := audio.KindIO; kind <= audio.KindUnsupported; kind++ {
		if _, ok := backendKinds[kind]; !ok {
			t.Errorf("backend kind %v has no taxonomy mapping", kind)
		}
	}
	if len(backendKinds) != int(audio.KindUnsupported)+1 {
		t.Errorf("expected %d mappings, got %d", int(audio.KindUnsupported)+1, len(backendKinds))
	}
}

func TestClassifyKeepsTaxonomyErrors(t *testing.T) {
	orig := &Error{Kind: NoAudioTrack}
	if classify(orig) != orig {
		t.Error("expected classify to pass through taxonomy errors")
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: IoError, Path: "/music/a.wav", Err: errors.New("permission denied")}
	msg := err.Error()
	for _, part := range []string{"/music/a.wav", "i/o error", "permission denied"} {
		if !strings.Contains(msg, part) {
			t.Errorf("expected %q in %q", part, msg)
		}
	}
}
