// ABOUTME: Tests for the WAV reader
// ABOUTME: Verifies track parameters, packetization and seeking over generated files
package format

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/musics-player/musics-go/internal/audiotest"
	"github.com/musics-player/musics-go/pkg/audio/decode"
	"github.com/spf13/afero"
)

func openTone(t *testing.T, tone audiotest.Tone) Reader {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := audiotest.WriteWAV(fs, "/tone.wav", tone); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	f, err := fs.Open("/tone.wav")
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}

	r, err := Probe(f)
	if err != nil {
		t.Fatalf("failed to probe: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestWAVTrack(t *testing.T) {
	r := openTone(t, audiotest.DefaultTone)

	if _, ok := r.(*wavReader); !ok {
		t.Fatalf("expected wav reader, got %T", r)
	}

	track := r.DefaultTrack()
	if track == nil {
		t.Fatal("expected a default track")
	}

	p := track.Params
	if p.Codec != decode.CodecPCM {
		t.Errorf("expected pcm codec, got %s", p.Codec)
	}
	if p.SampleRate != 8000 || p.Channels != 2 || p.BitDepth != 16 {
		t.Errorf("unexpected params: %+v", p)
	}
	if p.NFrames != 8000 {
		t.Errorf("expected 8000 frames, got %d", p.NFrames)
	}
	if got := p.TimeBase.CalcTime(p.NFrames); got != time.Second {
		t.Errorf("expected 1s duration, got %v", got)
	}
	if len(r.Tracks()) != 1 {
		t.Errorf("expected 1 track, got %d", len(r.Tracks()))
	}
}

func TestWAVPackets(t *testing.T) {
	r := openTone(t, audiotest.DefaultTone)

	var count int
	var next uint64
	for {
		pkt, err := r.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pkt.TS != next {
			t.Fatalf("packet %d: expected ts %d, got %d", count, next, pkt.TS)
		}
		// 20ms at 8kHz stereo 16-bit
		if len(pkt.Data) != 160*4 {
			t.Fatalf("packet %d: expected 640 bytes, got %d", count, len(pkt.Data))
		}
		next += pkt.Duration
		count++
	}

	if count != 50 {
		t.Errorf("expected 50 packets, got %d", count)
	}

	// Stays at end
	if _, err := r.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after end, got %v", err)
	}
}

func TestWAVSeek(t *testing.T) {
	r := openTone(t, audiotest.DefaultTone)

	seeked, err := r.Seek(500 * time.Millisecond)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if seeked.ActualTS != 4000 {
		t.Errorf("expected to land on frame 4000, got %d", seeked.ActualTS)
	}

	pkt, err := r.NextPacket()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkt.TS != 4000 {
		t.Errorf("expected packet at 4000, got %d", pkt.TS)
	}

	// Back to the start
	if _, err := r.Seek(0); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	pkt, err = r.NextPacket()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkt.TS != 0 {
		t.Errorf("expected packet at 0, got %d", pkt.TS)
	}
}

func TestWAVSeekPastEnd(t *testing.T) {
	r := openTone(t, audiotest.DefaultTone)

	if _, err := r.Seek(5 * time.Second); err != nil {
		t.Fatalf("seek past end should not fail: %v", err)
	}
	if _, err := r.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after seeking past end, got %v", err)
	}
}

func TestWAVMonoCodecParams(t *testing.T) {
	tone := audiotest.DefaultTone
	tone.Channels = 1
	tone.SampleRate = 44100
	r := openTone(t, tone)

	p := r.DefaultTrack().Params
	if p.Channels != 1 || p.SampleRate != 44100 {
		t.Errorf("unexpected params: %+v", p)
	}
	if p.NFrames != 44100 {
		t.Errorf("expected 44100 frames, got %d", p.NFrames)
	}

	pkt, err := r.NextPacket()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 20ms at 44.1kHz is 882 frames
	if pkt.Duration != 882 {
		t.Errorf("expected 882 frames per packet, got %d", pkt.Duration)
	}
}

func TestWAVWithoutData(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/empty.wav", audiotest.HeaderOnlyWAV(), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	f, err := fs.Open("/empty.wav")
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}

	r, err := Probe(f)
	if err != nil {
		t.Fatalf("failed to probe: %v", err)
	}
	defer r.Close()

	if r.DefaultTrack() != nil {
		t.Error("expected no audio track without a data chunk")
	}
	if _, err := r.NextPacket(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
