// ABOUTME: WAV fixture generation for tests
// ABOUTME: Writes sine-tone WAV files into an afero filesystem with go-audio/wav
package audiotest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// Tone describes a generated test signal
type Tone struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
	Frequency  float64
}

// DefaultTone is a short stereo 440Hz tone
var DefaultTone = Tone{
	SampleRate: 8000,
	Channels:   2,
	BitDepth:   16,
	Duration:   time.Second,
	Frequency:  440,
}

// Frames returns the number of frames the tone spans
func (t Tone) Frames() int {
	return int(time.Duration(t.SampleRate) * t.Duration / time.Second)
}

// Samples returns the interleaved integer samples of the tone
func (t Tone) Samples() []int {
	frames := t.Frames()
	amp := float64(int(1)<<(t.BitDepth-1)-1) * 0.5
	data := make([]int, frames*t.Channels)
	for i := 0; i < frames; i++ {
		v := int(amp * math.Sin(2*math.Pi*t.Frequency*float64(i)/float64(t.SampleRate)))
		for ch := 0; ch < t.Channels; ch++ {
			data[i*t.Channels+ch] = v
		}
	}
	return data
}

// WriteWAV writes the tone as a PCM WAV file at path
func WriteWAV(fs afero.Fs, path string, tone Tone) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, tone.SampleRate, tone.BitDepth, tone.Channels, 1)
	buf := &goaudio.IntBuffer{
		Data:           tone.Samples(),
		Format:         &goaudio.Format{NumChannels: tone.Channels, SampleRate: tone.SampleRate},
		SourceBitDepth: tone.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish wav: %w", err)
	}
	return nil
}

// HeaderOnlyWAV builds a RIFF file with a fmt chunk but no data chunk
func HeaderOnlyWAV() []byte {
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(4+8+16))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))     // PCM
	binary.Write(&b, binary.LittleEndian, uint16(2))     // channels
	binary.Write(&b, binary.LittleEndian, uint32(8000))  // sample rate
	binary.Write(&b, binary.LittleEndian, uint32(32000)) // byte rate
	binary.Write(&b, binary.LittleEndian, uint16(4))     // block align
	binary.Write(&b, binary.LittleEndian, uint16(16))    // bits per sample
	return b.Bytes()
}
