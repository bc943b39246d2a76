// ABOUTME: Tests for TUI model and state management
// ABOUTME: Drives key handling and rendering against a fake player
package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/musics-player/musics-go/internal/app"
	"github.com/musics-player/musics-go/internal/library"
	"github.com/samber/mo"
	"github.com/spf13/afero"
)

type fakePlayer struct {
	lib      *library.Library
	queue    []library.Song
	current  int
	state    app.State
	volume   float32
	seekedBy time.Duration
	played   []int
	removed  []int
	moves    [][2]int
	toggles  int
	ticks    int
	nextErr  error
}

func newFakePlayer(t *testing.T, names ...string) *fakePlayer {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/music", 0o755); err != nil {
		t.Fatalf("failed to create library dir: %v", err)
	}
	for _, name := range names {
		if err := afero.WriteFile(fs, "/music/"+name+".flac", []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}
	}
	lib := library.New(fs, "/music")
	if err := lib.Scan(); err != nil {
		t.Fatalf("failed to scan: %v", err)
	}
	return &fakePlayer{lib: lib, current: -1, state: app.StateStopped, volume: 1}
}

func (f *fakePlayer) Status() app.Status {
	st := app.Status{
		State:    f.state,
		Song:     mo.None[library.Song](),
		Index:    mo.None[int](),
		Elapsed:  70 * time.Second,
		Duration: 200 * time.Second,
		Volume:   f.volume,
		Queued:   len(f.queue),
	}
	if f.current >= 0 && f.current < len(f.queue) {
		st.Song = mo.Some(f.queue[f.current])
		st.Index = mo.Some(f.current)
	}
	return st
}

func (f *fakePlayer) Queue() []library.Song      { return f.queue }
func (f *fakePlayer) Library() *library.Library { return f.lib }

func (f *fakePlayer) Enqueue(id uuid.UUID) error {
	song, ok := f.lib.Song(id)
	if !ok {
		return app.ErrUnknownSong
	}
	f.queue = append(f.queue, song)
	if f.current < 0 {
		f.current = 0
		f.state = app.StatePlaying
	}
	return nil
}

func (f *fakePlayer) PlayIndex(i int) error {
	f.played = append(f.played, i)
	f.current = i
	return nil
}

func (f *fakePlayer) PlayNext() error     { return f.nextErr }
func (f *fakePlayer) PlayPrevious() error { return nil }

func (f *fakePlayer) Remove(i int) error {
	f.removed = append(f.removed, i)
	f.queue = append(f.queue[:i], f.queue[i+1:]...)
	return nil
}

func (f *fakePlayer) Move(from, to int) {
	f.moves = append(f.moves, [2]int{from, to})
	f.queue[from], f.queue[to] = f.queue[to], f.queue[from]
}

func (f *fakePlayer) TogglePause() error {
	f.toggles++
	return nil
}

func (f *fakePlayer) Stop()                      { f.state = app.StateStopped }
func (f *fakePlayer) SeekBy(delta time.Duration) { f.seekedBy += delta }
func (f *fakePlayer) Volume() float32            { return f.volume }
func (f *fakePlayer) SetVolume(v float32)        { f.volume = min(max(v, 0), 1) }

func (f *fakePlayer) Tick() (bool, error) {
	f.ticks++
	return false, nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func TestNewModel(t *testing.T) {
	p := newFakePlayer(t, "a", "b")
	model := NewModel(p)

	if model.focus != focusResults {
		t.Error("expected the library to have focus initially")
	}
	if len(model.results) != 2 {
		t.Errorf("expected all songs as results, got %d", len(model.results))
	}
	if model.status.State != app.StateStopped {
		t.Errorf("expected stopped status, got %q", model.status.State)
	}
	if model.Init() == nil {
		t.Error("expected Init to schedule a tick")
	}
}

func TestEnterQueuesResult(t *testing.T) {
	p := newFakePlayer(t, "a", "b")
	model := press(NewModel(p), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})

	if len(p.queue) != 1 || p.queue[0].Title != "b" {
		t.Fatalf("expected b queued, got %v", p.queue)
	}
	if len(model.queue) != 1 {
		t.Errorf("expected the model to refresh the queue, got %d", len(model.queue))
	}
	if song, ok := model.status.Song.Get(); !ok || song.Title != "b" {
		t.Errorf("expected b playing, got %v", model.status.Song)
	}
}

func TestQueueKeys(t *testing.T) {
	p := newFakePlayer(t, "a", "b", "c")
	enter := tea.KeyMsg{Type: tea.KeyEnter}
	down := tea.KeyMsg{Type: tea.KeyDown}
	model := press(NewModel(p), enter, down, enter, down, enter)

	model = press(model, tea.KeyMsg{Type: tea.KeyTab})
	if model.focus != focusQueue {
		t.Fatal("expected tab to focus the queue")
	}

	model = press(model, down, enter)
	if len(p.played) != 1 || p.played[0] != 1 {
		t.Errorf("expected entry 1 played, got %v", p.played)
	}

	model = press(model, runes("K"))
	if len(p.moves) != 1 || p.moves[0] != [2]int{1, 0} || model.queueIdx != 0 {
		t.Errorf("expected move 1->0 with the cursor following, got %v idx=%d", p.moves, model.queueIdx)
	}

	press(model, runes("x"))
	if len(p.removed) != 1 || p.removed[0] != 0 {
		t.Errorf("expected entry 0 removed, got %v", p.removed)
	}
}

func TestSearch(t *testing.T) {
	p := newFakePlayer(t, "Blue_in_Green", "So_What", "Freddie_Freeloader")
	model := press(NewModel(p), runes("/"))
	if model.focus != focusSearch {
		t.Fatal("expected / to focus search")
	}

	model = press(model, runes("w"), runes("h"))
	if len(model.results) != 1 || model.results[0].Title != "So What" {
		t.Errorf("expected only So What, got %v", model.results)
	}

	// keys go to the input while searching
	model = press(model, runes("q"))
	if model.input.Value() != "whq" {
		t.Errorf("expected the input to take q, got %q", model.input.Value())
	}

	model = press(model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.focus != focusResults {
		t.Error("expected esc to leave search")
	}
}

func TestTransportKeys(t *testing.T) {
	p := newFakePlayer(t, "a")
	model := press(NewModel(p),
		tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyRight},
		tea.KeyMsg{Type: tea.KeyLeft},
		runes("-"),
		runes("-"),
	)

	if p.toggles != 1 {
		t.Errorf("expected one toggle, got %d", p.toggles)
	}
	if p.seekedBy != seekStep {
		t.Errorf("expected net seek of %v, got %v", seekStep, p.seekedBy)
	}
	if p.volume < 0.89 || p.volume > 0.91 {
		t.Errorf("expected volume near 0.9, got %v", p.volume)
	}
	if model.status.Volume != p.volume {
		t.Error("expected status to reflect the volume change")
	}
}

func TestQuit(t *testing.T) {
	model := NewModel(newFakePlayer(t))
	_, cmd := model.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestTickPollsPlayer(t *testing.T) {
	p := newFakePlayer(t)
	model := NewModel(p)

	_, cmd := model.Update(TickMsg(time.Now()))
	if p.ticks != 1 {
		t.Errorf("expected one player tick, got %d", p.ticks)
	}
	if cmd == nil {
		t.Error("expected the next tick to be scheduled")
	}
}

func TestErrorIsShown(t *testing.T) {
	p := newFakePlayer(t)
	p.nextErr = app.ErrQueueEmpty
	model := press(NewModel(p), runes("n"))
	model = press(model, tea.WindowSizeMsg{Width: 120, Height: 40})

	if !errors.Is(model.lastErr, app.ErrQueueEmpty) {
		t.Fatalf("expected the error to be kept, got %v", model.lastErr)
	}
	if !strings.Contains(model.View(), app.ErrQueueEmpty.Error()) {
		t.Error("expected the error in the view")
	}

	model = press(model, runes("j"))
	if model.lastErr != nil {
		t.Error("expected the next key to clear the error")
	}
}

func TestView(t *testing.T) {
	p := newFakePlayer(t, "So_What")
	model := NewModel(p)
	if model.View() != "Loading..." {
		t.Error("expected a placeholder before the first resize")
	}

	model = press(model, tea.WindowSizeMsg{Width: 120, Height: 40}, tea.KeyMsg{Type: tea.KeyEnter})
	view := model.View()
	for _, part := range []string{"So What", "1:10", "3:20", "Queue (1)", "Library (1)"} {
		if !strings.Contains(view, part) {
			t.Errorf("expected %q in view", part)
		}
	}
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		value, total, width int
		expected            string
	}{
		{0, 100, 4, "░░░░"},
		{50, 100, 4, "██░░"},
		{100, 100, 4, "████"},
		{150, 100, 4, "████"},
		{5, 0, 2, "░░"},
	}

	for _, tt := range tests {
		if got := renderBar(tt.value, tt.total, tt.width); got != tt.expected {
			t.Errorf("renderBar(%d, %d, %d) = %q, expected %q", tt.value, tt.total, tt.width, got, tt.expected)
		}
	}
}
