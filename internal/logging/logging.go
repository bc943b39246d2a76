// ABOUTME: Logrus configuration for interactive and headless runs
// ABOUTME: TUI mode logs to the file only, headless mode also streams to stdout
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Setup opens the log file on fs and points the standard logrus logger at it.
// The returned closer releases the file.
func Setup(fs afero.Fs, level, file string, stream bool) (io.Closer, error) {
	if err := fs.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := fs.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	if stream {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		log.SetOutput(f)
	}

	log.SetFormatter(&log.TextFormatter{DisableColors: !stream})
	log.SetLevel(ParseLevel(level))

	return f, nil
}

// ParseLevel maps a level name to a logrus level, falling back to info
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}
