// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates the playback engine, library and play queue
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/musics-player/musics-go/internal/library"
	"github.com/musics-player/musics-go/internal/playlist"
	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrQueueEmpty is returned when there is nothing queued to play
	ErrQueueEmpty = errors.New("play queue is empty")

	// ErrUnknownSong is returned for ids the library does not know
	ErrUnknownSong = errors.New("song not in library")
)

// Engine is the playback surface the player drives
type Engine interface {
	PlayFile(path string) error
	Stop()
	Pause()
	Resume()
	IsPlaying() bool
	IsPaused() bool
	SongFinishedPlaying() bool
	Seek(t time.Duration)
	SongDuration() time.Duration
	TimeElapsed() time.Duration
	Volume() float32
	SetVolume(v float32)
	Close() error
}

// State is what the player is doing
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// Status is a snapshot for display
type Status struct {
	State    State
	Song     mo.Option[library.Song]
	Index    mo.Option[int]
	Elapsed  time.Duration
	Duration time.Duration
	Volume   float32
	Queued   int
}

// Player represents the main player application
type Player struct {
	engine  Engine
	library *library.Library

	// switching serializes song changes and is taken before mu. mu guards
	// the queue and is released while the engine opens a file.
	switching sync.Mutex
	mu        sync.Mutex
	playlist  *playlist.Playlist
	active    bool
}

// New creates a player over engine and lib
func New(engine Engine, lib *library.Library) *Player {
	return &Player{
		engine:   engine,
		library:  lib,
		playlist: playlist.New(),
	}
}

// Library returns the song library
func (p *Player) Library() *library.Library {
	return p.library
}

// Queue returns the queued songs in order. Entries the library no longer
// knows are skipped.
func (p *Player) Queue() []library.Song {
	p.mu.Lock()
	ids := p.playlist.Songs()
	p.mu.Unlock()

	songs := make([]library.Song, 0, len(ids))
	for _, id := range ids {
		if s, ok := p.library.Song(id); ok {
			songs = append(songs, s)
		}
	}
	return songs
}

// PlayNext plays the following queue entry, wrapping at the end
func (p *Player) PlayNext() error {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.play(p.playlist.SelectNext(), p.playlist.SelectNext)
}

// PlayPrevious plays the preceding queue entry, wrapping at the start
func (p *Player) PlayPrevious() error {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.play(p.playlist.SelectPrevious(), p.playlist.SelectPrevious)
}

// PlayIndex plays queue entry i
func (p *Player) PlayIndex(i int) error {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= p.playlist.Len() {
		return fmt.Errorf("queue index %d out of range", i)
	}
	return p.play(p.playlist.Select(i), p.playlist.SelectNext)
}

// play starts first, stepping past entries that fail to open. Each entry is
// tried at most once. Callers hold switching and mu; mu is dropped while the
// engine opens each file so Status and Queue stay responsive.
func (p *Player) play(first mo.Option[uuid.UUID], step func() mo.Option[uuid.UUID]) error {
	id, ok := first.Get()
	if !ok {
		return ErrQueueEmpty
	}

	var lastErr error
	for attempt := 0; attempt < p.playlist.Len(); attempt++ {
		if attempt > 0 {
			if id, ok = step().Get(); !ok {
				break
			}
		}

		song, known := p.library.Song(id)
		if !known {
			lastErr = fmt.Errorf("%w: %s", ErrUnknownSong, id)
			log.Warnf("Skipping queue entry: %v", lastErr)
			continue
		}

		p.mu.Unlock()
		err := p.engine.PlayFile(song.Path)
		p.mu.Lock()
		if err != nil {
			lastErr = err
			log.Warnf("Skipping %s: %v", song.Title, err)
			continue
		}
		p.active = true
		return nil
	}
	return lastErr
}

// Enqueue appends a library song. Queuing onto an empty, idle player starts it.
func (p *Player) Enqueue(id uuid.UUID) error {
	if _, ok := p.library.Song(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSong, id)
	}

	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playlist.Append(id)
	if p.playlist.Len() == 1 && !p.active {
		return p.play(p.playlist.Select(0), p.playlist.SelectNext)
	}
	return nil
}

// Remove drops queue entry i. Removing the playing song moves on to the next
// one, keeping it paused if playback was paused, and stops when the queue
// empties.
func (p *Player) Remove(i int) error {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= p.playlist.Len() {
		return fmt.Errorf("queue index %d out of range", i)
	}
	if !p.playlist.Remove(i) {
		return nil
	}

	current := p.playlist.Current()
	if !current.IsPresent() || !p.active {
		p.stop()
		return nil
	}

	wasPlaying := p.engine.IsPlaying()
	if err := p.play(current, p.playlist.SelectNext); err != nil {
		p.stop()
		return err
	}
	if !wasPlaying {
		p.engine.Pause()
	}
	return nil
}

// Move reorders the queue
func (p *Player) Move(from, to int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playlist.Switch(from, to)
}

// Clear empties the queue and stops playback
func (p *Player) Clear() {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playlist.Clear()
	p.stop()
}

// TogglePause pauses or resumes. When idle it starts the selected entry, or
// the next one.
func (p *Player) TogglePause() error {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.active && p.engine.IsPaused():
		p.engine.Resume()
	case p.active && p.engine.IsPlaying():
		p.engine.Pause()
	default:
		if cur := p.playlist.Current(); cur.IsPresent() {
			return p.play(cur, p.playlist.SelectNext)
		}
		return p.play(p.playlist.SelectNext(), p.playlist.SelectNext)
	}
	return nil
}

// Pause pauses playback
func (p *Player) Pause() {
	p.engine.Pause()
}

// Resume resumes playback
func (p *Player) Resume() {
	p.engine.Resume()
}

// Stop stops playback and keeps the queue
func (p *Player) Stop() {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
}

func (p *Player) stop() {
	p.engine.Stop()
	p.active = false
}

// Seek moves to t within the current song
func (p *Player) Seek(t time.Duration) {
	p.engine.Seek(clamp(t, p.engine.SongDuration()))
}

// SeekBy moves relative to the current position, staying within the song
func (p *Player) SeekBy(delta time.Duration) {
	p.Seek(p.engine.TimeElapsed() + delta)
}

func clamp(t, limit time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if t > limit {
		return limit
	}
	return t
}

// Volume returns the volume in [0, 1]
func (p *Player) Volume() float32 {
	return p.engine.Volume()
}

// SetVolume sets the volume, clamped to [0, 1]
func (p *Player) SetVolume(v float32) {
	p.engine.SetVolume(v)
}

// Tick advances to the next entry once the current song finishes. It
// reports whether a new song was started.
func (p *Player) Tick() (bool, error) {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || !p.engine.SongFinishedPlaying() {
		return false, nil
	}

	if err := p.play(p.playlist.SelectNext(), p.playlist.SelectNext); err != nil {
		p.active = false
		return false, err
	}
	return true, nil
}

// Status returns a snapshot of the player
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := Status{
		State:    StateStopped,
		Song:     mo.None[library.Song](),
		Index:    p.playlist.CurrentIndex(),
		Elapsed:  p.engine.TimeElapsed(),
		Duration: p.engine.SongDuration(),
		Volume:   p.engine.Volume(),
		Queued:   p.playlist.Len(),
	}

	if id, ok := p.playlist.Current().Get(); ok {
		if song, ok := p.library.Song(id); ok {
			st.Song = mo.Some(song)
		}
	}

	if p.active {
		switch {
		case p.engine.IsPaused():
			st.State = StatePaused
		case p.engine.IsPlaying():
			st.State = StatePlaying
		}
	}
	return st
}

// Close stops playback and releases the engine
func (p *Player) Close() error {
	p.switching.Lock()
	defer p.switching.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	return p.engine.Close()
}
