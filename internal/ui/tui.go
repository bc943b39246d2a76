// ABOUTME: TUI initialization and styles
// ABOUTME: Wraps the bubbletea program for the player UI
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// tickInterval is how often the model polls the player
const tickInterval = 250 * time.Millisecond

var (
	accent  = lipgloss.Color("#cba6f7")
	faint   = lipgloss.Color("#6c7086")
	errored = lipgloss.Color("#f38ba8")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	currentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	errorStyle    = lipgloss.NewStyle().Foreground(errored).Bold(true)
	paddingStyle  = lipgloss.NewStyle().Padding(1, 2)
)

// NewModel creates a new TUI model over player
func NewModel(player Player) Model {
	input := textinput.New()
	input.Placeholder = "search library"
	input.Prompt = "/ "
	input.CharLimit = 128

	m := Model{
		player:  player,
		input:   input,
		results: player.Library().Songs(),
		focus:   focusResults,
	}
	m.refresh()
	return m
}

// Run builds the TUI program. The caller runs it and owns shutdown.
func Run(player Player) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(player), tea.WithAltScreen())
	return p, nil
}
