// ABOUTME: Tests for FLAC decoder
// ABOUTME: Tests FLAC decoder creation and packet validation
package decode

import (
	"testing"

	"github.com/musics-player/musics-go/pkg/audio"
)

func TestNewFLAC(t *testing.T) {
	params := audio.CodecParams{
		Codec:      CodecFLAC,
		SampleRate: 44100,
		Channels:   2,
		BitDepth:   16,
	}

	decoder, err := NewFLAC(params)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestNewFLAC_InvalidCodec(t *testing.T) {
	params := audio.CodecParams{
		Codec:      CodecPCM,
		SampleRate: 44100,
		Channels:   2,
		BitDepth:   16,
	}

	if _, err := NewFLAC(params); err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}
}

func TestFLACDecode_NoFrame(t *testing.T) {
	decoder, err := NewFLAC(audio.CodecParams{
		Codec:      CodecFLAC,
		SampleRate: 44100,
		Channels:   2,
		BitDepth:   16,
	})
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	_, err = decoder.Decode(&audio.Packet{Data: []byte{1, 2, 3}})
	if err == nil {
		t.Fatal("expected error for packet without a frame")
	}
	if !audio.IsDecodeError(err) {
		t.Errorf("expected a recoverable decode error, got %v", err)
	}
}
