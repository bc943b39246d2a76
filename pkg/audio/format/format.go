// ABOUTME: Container reader interface and content-sniffing probe
// ABOUTME: Picks a demuxer from the leading bytes of a media source
package format

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/musics-player/musics-go/pkg/audio"
)

// Reader gives packetized access to the audio track of a container
type Reader interface {
	// Tracks lists the audio tracks in the container
	Tracks() []audio.Track

	// DefaultTrack returns the track to play, or nil if there is none
	DefaultTrack() *audio.Track

	// NextPacket reads the next packet. It returns io.EOF at the end of the stream.
	NextPacket() (*audio.Packet, error)

	// Seek moves to the packet at or before the given time. Seeking at or
	// past the end positions the reader at end of stream.
	Seek(to time.Duration) (SeekedTo, error)

	// Close releases the reader and its media source
	Close() error
}

// SeekedTo reports where a coarse seek landed
type SeekedTo struct {
	TrackID    uint32
	RequiredTS uint64
	ActualTS   uint64
}

// sniffLen is enough to see the first Ogg packet header
const sniffLen = 512

var (
	magicFLAC = []byte("fLaC")
	magicRIFF = []byte("RIFF")
	magicWAVE = []byte("WAVE")
	magicOgg  = []byte("OggS")
	magicID3  = []byte("ID3")
)

// Probe sniffs the container format of src by content and opens a reader for it.
// On success the reader owns src; on failure the caller still does.
func Probe(src audio.MediaSource) (Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, audio.IOError("probe", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, audio.UnsupportedError("probe", "empty media source")
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, audio.IOError("probe", err)
	}

	switch {
	case bytes.HasPrefix(head, magicFLAC):
		return newFLACReader(src)
	case len(head) >= 12 && bytes.Equal(head[0:4], magicRIFF) && bytes.Equal(head[8:12], magicWAVE):
		return newWAVReader(src)
	case bytes.HasPrefix(head, magicOgg):
		return probeOgg(src, head)
	case bytes.HasPrefix(head, magicID3) || isMPEGSync(head):
		return newMP3Reader(src)
	}

	return nil, audio.UnsupportedError("probe", "unrecognized container")
}

// isMPEGSync reports whether b starts with an MPEG audio frame sync word
func isMPEGSync(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0
}

// probeOgg looks at the first packet of the first page to pick the codec
func probeOgg(src audio.MediaSource, head []byte) (Reader, error) {
	if len(head) < 27 {
		return nil, audio.DecodeError("probe", errors.New("truncated ogg page"))
	}
	start := 27 + int(head[26])
	if len(head) < start+8 {
		return nil, audio.DecodeError("probe", errors.New("truncated ogg page"))
	}
	first := head[start:]

	switch {
	case bytes.HasPrefix(first, opusHeadMagic):
		return newOggOpusReader(src)
	case bytes.HasPrefix(first, vorbisHeadMagic):
		return newVorbisReader(src)
	}
	return nil, audio.UnsupportedError("probe", "unsupported ogg codec")
}

// singleTrack is the track bookkeeping shared by one-track readers
type singleTrack struct {
	track audio.Track
}

func (s *singleTrack) Tracks() []audio.Track {
	return []audio.Track{s.track}
}

func (s *singleTrack) DefaultTrack() *audio.Track {
	t := s.track
	return &t
}
