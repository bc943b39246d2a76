// ABOUTME: Error taxonomy for opening a playback session
// ABOUTME: Maps backend error kinds onto the four construction failures in one table
package player

import (
	"errors"
	"fmt"

	"github.com/musics-player/musics-go/pkg/audio"
)

// ErrorKind is a construction failure class
type ErrorKind int

const (
	UnsupportedFormat ErrorKind = iota + 1
	NoAudioTrack
	IoError
	DecodeInitError
)

// Sentinels for errors.Is
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNoAudioTrack      = errors.New("no audio track")
	ErrIO                = errors.New("i/o error")
	ErrDecodeInit        = errors.New("could not decode stream")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case UnsupportedFormat:
		return ErrUnsupportedFormat
	case NoAudioTrack:
		return ErrNoAudioTrack
	case IoError:
		return ErrIO
	case DecodeInitError:
		return ErrDecodeInit
	}
	return nil
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error reports why a file could not be played
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind's sentinel. A missing track is also an unsupported format.
func (e *Error) Is(target error) bool {
	if target == e.Kind.sentinel() {
		return true
	}
	return e.Kind == NoAudioTrack && target == ErrUnsupportedFormat
}

// backendKinds is the single translation from backend conditions to the taxonomy
var backendKinds = map[audio.ErrorKind]ErrorKind{
	audio.KindIO:          IoError,
	audio.KindDecode:      DecodeInitError,
	audio.KindSeek:        DecodeInitError,
	audio.KindUnsupported: UnsupportedFormat,
}

// classify wraps a backend error in the taxonomy
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	kind, ok := backendKinds[audio.KindOf(err)]
	if !ok {
		kind = IoError
	}
	return &Error{Kind: kind, Err: err}
}
