// ABOUTME: Default configuration fields and their descriptions
// ABOUTME: Every key the application reads is registered here
package config

import (
	"os"
	"path/filepath"
)

// Keys read by the application
const (
	LibraryDirectory = "library.directory"

	OutputBackend    = "output.backend"
	OutputSampleRate = "output.sample_rate"
	OutputChannels   = "output.channels"

	PlayerVolume = "player.volume"

	RemoteEnabled = "remote.enabled"
	RemotePort    = "remote.port"
	RemoteMDNS    = "remote.mdns"

	LogLevel = "log.level"
	LogFile  = "log.file"
)

// Field is a configuration key with its default value
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable that overrides this field
func (f *Field) Env() string {
	return envName(f.Key)
}

// Default holds every registered field by key
var Default = make(map[string]*Field)

func register(f *Field) {
	Default[f.Key] = f
}

func defaultMusicDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Music"
	}
	return filepath.Join(home, "Music")
}

func init() {
	register(&Field{
		LibraryDirectory,
		defaultMusicDir(),
		"Directory scanned for audio files",
	})

	register(&Field{
		OutputBackend,
		"oto",
		"Audio output backend: oto, beep, portaudio, malgo or null",
	})
	register(&Field{
		OutputSampleRate,
		44100,
		"Output device sample rate in Hz",
	})
	register(&Field{
		OutputChannels,
		2,
		"Output device channel count",
	})

	register(&Field{
		PlayerVolume,
		1.0,
		"Initial volume between 0 and 1",
	})

	register(&Field{
		RemoteEnabled,
		false,
		"Serve the HTTP remote control",
	})
	register(&Field{
		RemotePort,
		8927,
		"Port for the HTTP remote control",
	})
	register(&Field{
		RemoteMDNS,
		true,
		"Advertise the remote control over mDNS",
	})

	register(&Field{
		LogLevel,
		"info",
		"Log level: trace, debug, info, warn or error",
	})
	register(&Field{
		LogFile,
		"musics.log",
		"Log file name, relative to the config directory unless absolute",
	})
}
