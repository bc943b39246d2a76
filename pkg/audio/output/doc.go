// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Device and Sink interfaces with oto, beep, portaudio, malgo and null backends
// Package output plays pull-based sample sources on an audio device.
//
// Every backend shares PullSink, which converts each source block to the
// device format and applies volume. Oto is the default backend; portaudio
// and malgo need the matching build tag.
//
// Example:
//
//	dev, err := output.New(output.BackendOto, audio.SignalSpec{SampleRate: 44100, Channels: 2})
//	sink, err := dev.NewSink()
//	sink.Append(src)
//	sink.Play()
package output
