// ABOUTME: Streaming playback core package
// ABOUTME: Stream decoding, shared playback control and the playback engine
// Package player turns audio files into a stream of samples on an output device.
//
// A session is one StreamDecoder and its Control. The Engine builds a new
// session for every PlayFile and answers queries from the active Control, so
// a UI loop can poll it without touching the audio goroutine.
//
// Example:
//
//	dev, _ := output.New(output.BackendOto, audio.SignalSpec{SampleRate: 44100, Channels: 2})
//	engine, _ := player.NewEngine(player.EngineConfig{Device: dev})
//	engine.PlayFile("song.flac")
//	engine.Seek(30 * time.Second)
//	fmt.Println(engine.TimeElapsed(), engine.SongDuration())
package player
