// ABOUTME: FLAC fixture generation for tests
// ABOUTME: Encodes tones as verbatim FLAC frames with the mewkiz/flac encoder
package audiotest

import (
	"fmt"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/spf13/afero"
)

// DefaultFLACBlockSize gives 125 frames per second at 8kHz
const DefaultFLACBlockSize = 64

// WriteFLAC writes the tone as a FLAC stream with fixed blockSize frames.
// The last frame is shorter when the tone does not fill it.
func WriteFLAC(fs afero.Fs, path string, tone Tone, blockSize int) error {
	channels, err := flacChannels(tone.Channels)
	if err != nil {
		return err
	}

	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	info := &meta.StreamInfo{
		BlockSizeMin:  uint16(blockSize),
		BlockSizeMax:  uint16(blockSize),
		SampleRate:    uint32(tone.SampleRate),
		NChannels:     uint8(tone.Channels),
		BitsPerSample: uint8(tone.BitDepth),
		NSamples:      uint64(tone.Frames()),
	}
	enc, err := flac.NewEncoder(f, info)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to start flac: %w", err)
	}
	enc.EnablePredictionAnalysis(false)

	samples := tone.Samples()
	total := tone.Frames()
	for start := 0; start < total; start += blockSize {
		n := min(blockSize, total-start)
		fr := &frame.Frame{
			Header: frame.Header{
				HasFixedBlockSize: true,
				BlockSize:         uint16(n),
				SampleRate:        uint32(tone.SampleRate),
				Channels:          channels,
				BitsPerSample:     uint8(tone.BitDepth),
			},
		}
		for ch := 0; ch < tone.Channels; ch++ {
			sub := &frame.Subframe{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   make([]int32, n),
				NSamples:  n,
			}
			for i := 0; i < n; i++ {
				sub.Samples[i] = int32(samples[(start+i)*tone.Channels+ch])
			}
			fr.Subframes = append(fr.Subframes, sub)
		}
		if err := enc.WriteFrame(fr); err != nil {
			enc.Close()
			return fmt.Errorf("failed to write frame at %d: %w", start, err)
		}
	}

	// Close rewrites STREAMINFO and closes f
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish flac: %w", err)
	}
	return nil
}

func flacChannels(n int) (frame.Channels, error) {
	switch n {
	case 1:
		return frame.ChannelsMono, nil
	case 2:
		return frame.ChannelsLR, nil
	}
	return 0, fmt.Errorf("unsupported channel count %d", n)
}
