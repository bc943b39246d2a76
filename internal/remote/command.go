// ABOUTME: Remote command decoding and dispatch
// ABOUTME: Shared by the HTTP control route and the websocket
package remote

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/musics-player/musics-go/internal/app"
)

var (
	// ErrUnknownCommand is returned for command names outside the table
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingArgument is returned when a command needs a parameter
	ErrMissingArgument = errors.New("missing argument")
)

// Command is a remote request
type Command struct {
	Command    string   `json:"command"`
	PositionMs *int64   `json:"position_ms,omitempty"`
	Level      *float64 `json:"level,omitempty"`
}

var commands = map[string]func(ctl Controller, cmd Command) error{
	"pause": func(ctl Controller, _ Command) error {
		ctl.Pause()
		return nil
	},
	"resume": func(ctl Controller, _ Command) error {
		ctl.Resume()
		return nil
	},
	"next": func(ctl Controller, _ Command) error {
		return ctl.PlayNext()
	},
	"previous": func(ctl Controller, _ Command) error {
		return ctl.PlayPrevious()
	},
	"stop": func(ctl Controller, _ Command) error {
		ctl.Stop()
		return nil
	},
	"seek": func(ctl Controller, cmd Command) error {
		if cmd.PositionMs == nil {
			return fmt.Errorf("%w: position_ms", ErrMissingArgument)
		}
		ctl.Seek(time.Duration(*cmd.PositionMs) * time.Millisecond)
		return nil
	},
	"volume": func(ctl Controller, cmd Command) error {
		if cmd.Level == nil {
			return fmt.Errorf("%w: level", ErrMissingArgument)
		}
		ctl.SetVolume(float32(*cmd.Level))
		return nil
	},
}

func (s *Server) execute(cmd Command) error {
	fn, ok := commands[cmd.Command]
	if !ok {
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownCommand, cmd.Command, strings.Join(commandNames(), ", "))
	}
	return fn(s.ctl, cmd)
}

// StatusResponse is the JSON form of a player status
type StatusResponse struct {
	State      string  `json:"state"`
	SongID     string  `json:"song_id,omitempty"`
	Title      string  `json:"title,omitempty"`
	Path       string  `json:"path,omitempty"`
	Index      *int    `json:"index,omitempty"`
	ElapsedMs  int64   `json:"elapsed_ms"`
	DurationMs int64   `json:"duration_ms"`
	Volume     float32 `json:"volume"`
	Queued     int     `json:"queued"`
}

// NewStatusResponse converts a status snapshot
func NewStatusResponse(st app.Status) StatusResponse {
	resp := StatusResponse{
		State:      string(st.State),
		ElapsedMs:  st.Elapsed.Milliseconds(),
		DurationMs: st.Duration.Milliseconds(),
		Volume:     st.Volume,
		Queued:     st.Queued,
	}
	if song, ok := st.Song.Get(); ok {
		resp.SongID = song.ID.String()
		resp.Title = song.Title
		resp.Path = song.Path
	}
	if i, ok := st.Index.Get(); ok {
		resp.Index = &i
	}
	return resp
}
