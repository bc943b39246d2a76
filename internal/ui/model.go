// ABOUTME: Bubbletea model for player TUI
// ABOUTME: Library search, play queue and transport controls
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/musics-player/musics-go/internal/app"
	"github.com/musics-player/musics-go/internal/library"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	log "github.com/sirupsen/logrus"
)

// seekStep is how far the arrow keys seek
const seekStep = 5 * time.Second

// volumeStep is how much +/- change the volume
const volumeStep = 0.05

// Player is what the UI drives
type Player interface {
	Status() app.Status
	Queue() []library.Song
	Library() *library.Library
	Enqueue(id uuid.UUID) error
	PlayIndex(i int) error
	PlayNext() error
	PlayPrevious() error
	Remove(i int) error
	Move(from, to int)
	TogglePause() error
	Stop()
	SeekBy(delta time.Duration)
	Volume() float32
	SetVolume(v float32)
	Tick() (bool, error)
}

type focus int

const (
	focusResults focus = iota
	focusQueue
	focusSearch
)

// Model represents the TUI state
type Model struct {
	player Player

	input   textinput.Model
	results []library.Song
	queue   []library.Song
	status  app.Status

	focus     focus
	resultIdx int
	queueIdx  int
	lastErr   error

	width  int
	height int
}

// TickMsg asks the model to poll the player
type TickMsg time.Time

// RescanMsg reports a finished library rescan
type RescanMsg struct {
	Err error
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case TickMsg:
		if _, err := m.player.Tick(); err != nil {
			m.setErr(err)
		}
		m.refresh()
		return m, tick()
	case RescanMsg:
		if msg.Err != nil {
			m.setErr(msg.Err)
		}
		m.results = m.player.Library().Search(m.input.Value())
		m.resultIdx = clampIndex(m.resultIdx, len(m.results))
	}

	return m, nil
}

func (m *Model) refresh() {
	m.status = m.player.Status()
	m.queue = m.player.Queue()
	m.queueIdx = clampIndex(m.queueIdx, len(m.queue))
}

func (m *Model) setErr(err error) {
	log.Warnf("ui: %v", err)
	m.lastErr = err
}

func clampIndex(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.focus == focusSearch {
		return m.handleSearchKey(msg)
	}

	m.lastErr = nil
	var err error

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.focus = focusSearch
		cmd := m.input.Focus()
		return m, cmd
	case "tab":
		if m.focus == focusResults {
			m.focus = focusQueue
		} else {
			m.focus = focusResults
		}
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		err = m.activate()
	case "x", "delete":
		if m.focus == focusQueue && len(m.queue) > 0 {
			err = m.player.Remove(m.queueIdx)
		}
	case "K":
		m.moveEntry(-1)
	case "J":
		m.moveEntry(1)
	case " ":
		err = m.player.TogglePause()
	case "n":
		err = m.player.PlayNext()
	case "p":
		err = m.player.PlayPrevious()
	case "s":
		m.player.Stop()
	case "left":
		m.player.SeekBy(-seekStep)
	case "right":
		m.player.SeekBy(seekStep)
	case "+", "=":
		m.player.SetVolume(m.player.Volume() + volumeStep)
	case "-":
		m.player.SetVolume(m.player.Volume() - volumeStep)
	case "r":
		lib := m.player.Library()
		return m, func() tea.Msg { return RescanMsg{Err: lib.Scan()} }
	}

	if err != nil {
		m.setErr(err)
	}
	m.refresh()
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.input.Blur()
		m.focus = focusResults
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.results = m.player.Library().Search(m.input.Value())
	m.resultIdx = 0
	return m, cmd
}

func (m *Model) moveCursor(delta int) {
	if m.focus == focusQueue {
		m.queueIdx = clampIndex(m.queueIdx+delta, len(m.queue))
		return
	}
	m.resultIdx = clampIndex(m.resultIdx+delta, len(m.results))
}

func (m *Model) moveEntry(delta int) {
	if m.focus != focusQueue {
		return
	}
	target := m.queueIdx + delta
	if target < 0 || target >= len(m.queue) {
		return
	}
	m.player.Move(m.queueIdx, target)
	m.queueIdx = target
}

// activate queues the highlighted result or plays the highlighted entry
func (m *Model) activate() error {
	if m.focus == focusQueue {
		if len(m.queue) == 0 {
			return nil
		}
		return m.player.PlayIndex(m.queueIdx)
	}
	if len(m.results) == 0 {
		return nil
	}
	return m.player.Enqueue(m.results[m.resultIdx].ID)
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	inner := m.width - 4
	sections := []string{
		titleStyle.Render("musics"),
		m.renderNowPlaying(inner),
		m.input.View(),
		m.renderPanes(inner),
	}
	if m.lastErr != nil {
		sections = append(sections, errorStyle.Render(wrap.String(m.lastErr.Error(), inner)))
	}
	sections = append(sections, faintStyle.Render(helpText))

	return paddingStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

const helpText = "space:Play/Pause  n/p:Next/Prev  ←/→:Seek  +/-:Volume  /:Search  tab:Switch  enter:Queue/Play  x:Remove  J/K:Move  r:Rescan  q:Quit"

// renderNowPlaying renders the current song, progress and volume
func (m Model) renderNowPlaying(width int) string {
	st := m.status
	title := "Nothing playing"
	if song, ok := st.Song.Get(); ok {
		title = song.Title
	}

	progress := 0
	if st.Duration > 0 {
		progress = int(st.Elapsed * 100 / st.Duration)
	}

	lines := []string{
		truncate.StringWithTail(fmt.Sprintf("%s  %s", stateIcon(st.State), title), uint(max(width, 1)), "…"),
		fmt.Sprintf("%s [%s] %s", app.FormatDuration(st.Elapsed), renderBar(progress, 100, 30), app.FormatDuration(st.Duration)),
		fmt.Sprintf("Volume: [%s] %d%%", renderBar(int(st.Volume*100+0.5), 100, 10), int(st.Volume*100+0.5)),
	}
	return strings.Join(lines, "\n")
}

// renderPanes renders search results and the queue side by side
func (m Model) renderPanes(width int) string {
	half := max(width/2-1, 10)
	rows := max(m.height-14, 3)

	results := m.renderList("Library", m.results, m.resultIdx, -1, m.focus != focusQueue, half, rows)
	current := m.status.Index.OrElse(-1)
	queue := m.renderList("Queue", m.queue, m.queueIdx, current, m.focus == focusQueue, half, rows)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(results),
		"  ",
		lipgloss.NewStyle().Width(half).Render(queue),
	)
}

func (m Model) renderList(name string, songs []library.Song, cursor, playing int, focused bool, width, rows int) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", name, len(songs)))}
	if len(songs) == 0 {
		return strings.Join(append(lines, faintStyle.Render("empty")), "\n")
	}

	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	end := min(start+rows, len(songs))

	for i := start; i < end; i++ {
		marker := "  "
		if i == playing {
			marker = "▶ "
		}
		line := truncate.StringWithTail(marker+songs[i].Title, uint(max(width, 1)), "…")
		switch {
		case focused && i == cursor:
			line = selectedStyle.Render(line)
		case i == playing:
			line = currentStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func stateIcon(state app.State) string {
	switch state {
	case app.StatePlaying:
		return "▶"
	case app.StatePaused:
		return "⏸"
	}
	return "■"
}

// renderBar draws value out of total as a width-cell bar
func renderBar(value, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(max(value*width/total, 0), width)
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
