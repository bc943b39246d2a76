// ABOUTME: Ordered queue of song ids with an optional current entry
// ABOUTME: Selection wraps around both ends and follows songs when entries move
package playlist

import (
	"slices"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// Playlist is not safe for concurrent use
type Playlist struct {
	songs   []uuid.UUID
	current mo.Option[int]
}

// New returns an empty playlist
func New() *Playlist {
	return &Playlist{current: mo.None[int]()}
}

// Songs returns a copy of the queued ids
func (p *Playlist) Songs() []uuid.UUID {
	return slices.Clone(p.songs)
}

// Len returns the number of entries
func (p *Playlist) Len() int {
	return len(p.songs)
}

// Append adds id at the end without changing the selection
func (p *Playlist) Append(id uuid.UUID) {
	p.songs = append(p.songs, id)
}

// CurrentIndex returns the selected position
func (p *Playlist) CurrentIndex() mo.Option[int] {
	return p.current
}

// Current returns the selected song
func (p *Playlist) Current() mo.Option[uuid.UUID] {
	return p.at(p.current)
}

func (p *Playlist) at(index mo.Option[int]) mo.Option[uuid.UUID] {
	i, ok := index.Get()
	if !ok || i < 0 || i >= len(p.songs) {
		return mo.None[uuid.UUID]()
	}
	return mo.Some(p.songs[i])
}

// SelectNext moves to the following entry, wrapping to the first. With no
// selection it picks the first entry.
func (p *Playlist) SelectNext() mo.Option[uuid.UUID] {
	if len(p.songs) == 0 {
		p.current = mo.None[int]()
		return mo.None[uuid.UUID]()
	}

	next := 0
	if i, ok := p.current.Get(); ok && i+1 < len(p.songs) {
		next = i + 1
	}
	p.current = mo.Some(next)
	return p.Current()
}

// SelectPrevious moves to the preceding entry, wrapping to the last. With no
// selection it picks the last entry.
func (p *Playlist) SelectPrevious() mo.Option[uuid.UUID] {
	if len(p.songs) == 0 {
		p.current = mo.None[int]()
		return mo.None[uuid.UUID]()
	}

	prev := len(p.songs) - 1
	if i, ok := p.current.Get(); ok && i > 0 {
		prev = i - 1
	}
	p.current = mo.Some(prev)
	return p.Current()
}

// Select makes entry i current. An out of range index leaves the selection
// unchanged.
func (p *Playlist) Select(i int) mo.Option[uuid.UUID] {
	if i < 0 || i >= len(p.songs) {
		return mo.None[uuid.UUID]()
	}
	p.current = mo.Some(i)
	return p.Current()
}

// Remove drops entry i and reports whether it was the current one. The
// selection then points at the entry that followed, wrapping to the first,
// and clears when the playlist empties.
func (p *Playlist) Remove(i int) bool {
	if i < 0 || i >= len(p.songs) {
		return false
	}
	p.songs = slices.Delete(p.songs, i, i+1)

	cur, ok := p.current.Get()
	switch {
	case !ok:
		return false
	case len(p.songs) == 0:
		p.current = mo.None[int]()
		return cur == i
	case i < cur:
		p.current = mo.Some(cur - 1)
		return false
	case i > cur:
		return false
	}

	if cur >= len(p.songs) {
		p.current = mo.Some(0)
	}
	return true
}

// Switch moves entry from to position to, keeping the selection on the same
// song
func (p *Playlist) Switch(from, to int) {
	n := len(p.songs)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return
	}

	id := p.songs[from]
	p.songs = slices.Delete(p.songs, from, from+1)
	p.songs = slices.Insert(p.songs, to, id)

	cur, ok := p.current.Get()
	if !ok {
		return
	}
	switch {
	case cur == from:
		cur = to
	case from < cur && cur <= to:
		cur--
	case to <= cur && cur < from:
		cur++
	}
	p.current = mo.Some(cur)
}

// Clear removes every entry and the selection
func (p *Playlist) Clear() {
	p.songs = nil
	p.current = mo.None[int]()
}
