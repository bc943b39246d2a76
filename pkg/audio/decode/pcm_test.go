// ABOUTME: Tests for PCM decoder
// ABOUTME: Tests integer and float PCM decoding to int16
package decode

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/musics-player/musics-go/pkg/audio"
)

func pcmParams(bitDepth int) audio.CodecParams {
	return audio.CodecParams{
		Codec:      CodecPCM,
		SampleRate: 48000,
		Channels:   2,
		BitDepth:   bitDepth,
	}
}

func TestNewPCM(t *testing.T) {
	decoder, err := NewPCM(pcmParams(16))
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	if decoder == nil {
		t.Fatal("expected decoder to be created")
	}
}

func TestPCMDecode16Bit(t *testing.T) {
	decoder, err := NewPCM(pcmParams(16))
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 0x00, 0x01 -> 0x0100 = 256; 0x02, 0x03 -> 0x0302 = 770
	input := []byte{0x00, 0x01, 0x02, 0x03}
	block, err := decoder.Decode(&audio.Packet{Data: input})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(block.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(block.Samples))
	}
	if block.Samples[0] != 256 {
		t.Errorf("expected first sample 256, got %d", block.Samples[0])
	}
	if block.Samples[1] != 770 {
		t.Errorf("expected second sample 770, got %d", block.Samples[1])
	}
	if block.Spec != (audio.SignalSpec{SampleRate: 48000, Channels: 2}) {
		t.Errorf("unexpected spec: %+v", block.Spec)
	}
}

func TestPCMDecode24Bit(t *testing.T) {
	decoder, err := NewPCM(pcmParams(24))
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 0x020100 >> 8 = 0x0201, 0xFFFF00 (-256) >> 8 = -1
	input := []byte{0x00, 0x01, 0x02, 0x00, 0xFF, 0xFF}
	block, err := decoder.Decode(&audio.Packet{Data: input})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if block.Samples[0] != 0x0201 {
		t.Errorf("expected first sample %d, got %d", 0x0201, block.Samples[0])
	}
	if block.Samples[1] != -1 {
		t.Errorf("expected second sample -1, got %d", block.Samples[1])
	}
}

func TestPCMDecode8Bit(t *testing.T) {
	params := pcmParams(8)
	params.Channels = 1
	decoder, err := NewPCM(params)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	block, err := decoder.Decode(&audio.Packet{Data: []byte{0, 128, 255}})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	expected := []int16{-32768, 0, 32512}
	for i, want := range expected {
		if block.Samples[i] != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, block.Samples[i])
		}
	}
}

func TestPCMDecodeFloat(t *testing.T) {
	params := pcmParams(32)
	params.Float = true
	params.Channels = 1
	decoder, err := NewPCM(params)
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	input := make([]byte, 8)
	binary.LittleEndian.PutUint32(input[0:], math.Float32bits(0.5))
	binary.LittleEndian.PutUint32(input[4:], math.Float32bits(-1.0))

	block, err := decoder.Decode(&audio.Packet{Data: input})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if block.Samples[0] != 16383 {
		t.Errorf("expected 16383, got %d", block.Samples[0])
	}
	if block.Samples[1] != -32768 {
		t.Errorf("expected -32768, got %d", block.Samples[1])
	}
}

func TestPCMDecode_PartialFrame(t *testing.T) {
	decoder, err := NewPCM(pcmParams(16))
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	// 3 bytes is not a whole stereo 16-bit frame
	_, err = decoder.Decode(&audio.Packet{Data: []byte{1, 2, 3}})
	if err == nil {
		t.Fatal("expected error for partial frame")
	}
	if !audio.IsDecodeError(err) {
		t.Errorf("expected a recoverable decode error, got %v", err)
	}
}

func TestNewPCM_InvalidCodec(t *testing.T) {
	params := pcmParams(16)
	params.Codec = CodecOpus

	decoder, err := NewPCM(params)
	if err == nil {
		t.Fatal("expected error for invalid codec, got nil")
	}

	if decoder != nil {
		t.Fatal("expected decoder to be nil for invalid codec")
	}

	if !strings.Contains(err.Error(), "invalid codec for PCM decoder: opus") {
		t.Errorf("unexpected error %q", err.Error())
	}
	if audio.KindOf(err) != audio.KindUnsupported {
		t.Errorf("expected unsupported kind, got %v", audio.KindOf(err))
	}
}

func TestNewPCM_UnsupportedBitDepth(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		float    bool
	}{
		{"12 bit", 12, false},
		{"64 bit", 64, false},
		{"16 bit float", 16, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pcmParams(tt.bitDepth)
			params.Float = tt.float

			decoder, err := NewPCM(params)
			if err == nil {
				t.Fatal("expected error for unsupported bit depth, got nil")
			}
			if decoder != nil {
				t.Fatal("expected decoder to be nil for unsupported bit depth")
			}
		})
	}
}

func TestPCMDecode_EmptyInput(t *testing.T) {
	decoder, err := NewPCM(pcmParams(16))
	if err != nil {
		t.Fatalf("failed to create decoder: %v", err)
	}

	block, err := decoder.Decode(&audio.Packet{Data: []byte{}})
	if err != nil {
		t.Fatalf("decode failed with empty input: %v", err)
	}

	if len(block.Samples) != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", len(block.Samples))
	}
}
