// ABOUTME: File inspection without starting playback
// ABOUTME: Reports the default track and its duration, classified like PlayFile errors
package player

import (
	"time"

	"github.com/musics-player/musics-go/pkg/audio"
	"github.com/musics-player/musics-go/pkg/audio/format"
	"github.com/spf13/afero"
)

// Info describes a playable file
type Info struct {
	Path          string
	Track         audio.Track
	Duration      time.Duration
	DurationKnown bool
}

// Inspect probes path on fs and returns its default track
func Inspect(fs afero.Fs, path string) (Info, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Info{}, &Error{Kind: IoError, Path: path, Err: err}
	}

	reader, err := format.Probe(f)
	if err != nil {
		f.Close()
		perr := classify(err)
		perr.Path = path
		return Info{}, perr
	}
	defer reader.Close()

	track := reader.DefaultTrack()
	if track == nil {
		return Info{}, &Error{Kind: NoAudioTrack, Path: path}
	}

	duration, known := trackDuration(track.Params)
	return Info{
		Path:          path,
		Track:         *track,
		Duration:      duration,
		DurationKnown: known,
	}, nil
}
