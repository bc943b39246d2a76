// ABOUTME: Backend error kinds reported by demuxers and codec decoders
// ABOUTME: Lets callers classify failures without knowing the backend library
package audio

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a backend failure
type ErrorKind int

const (
	KindIO ErrorKind = iota
	KindDecode
	KindSeek
	KindUnsupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindSeek:
		return "seek"
	case KindUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified backend failure
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrSeekOutOfRange reports a seek target past the end of the stream
var ErrSeekOutOfRange = &Error{Kind: KindSeek, Op: "seek", Err: errors.New("out of range")}

// IOError wraps a read or seek failure on the media source
func IOError(op string, err error) error {
	return &Error{Kind: KindIO, Op: op, Err: err}
}

// DecodeError wraps a malformed packet or bitstream failure
func DecodeError(op string, err error) error {
	return &Error{Kind: KindDecode, Op: op, Err: err}
}

// UnsupportedError reports an unrecognized container or codec feature
func UnsupportedError(op string, format string, args ...any) error {
	return &Error{Kind: KindUnsupported, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of a backend error. Unclassified errors count as IO.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}

// IsDecodeError reports whether err is a recoverable per-packet failure
func IsDecodeError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindDecode
}
