// Package input provides the query input component for the TUI.
package input

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/messages"
	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/styles"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// DebounceDelay is how long typing must pause before the query is
// dispatched automatically.
const DebounceDelay = 300 * time.Millisecond

// SearchBar wraps a bubbles textinput with typing debounce. Queries
// that were already dispatched once skip the debounce and fire
// immediately, so backspacing through recent queries feels instant.
type SearchBar struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	// revision increments on every edit; a pending debounce timer is
	// stale unless it carries the current revision.
	revision int

	// dispatched remembers query strings already sent this session.
	dispatched map[string]struct{}
}

// NewSearchBar creates a new search input component.
func NewSearchBar(s *styles.Styles) *SearchBar {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Search messages... (from:name filters by sender)"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	return &SearchBar{
		textinput:  ti,
		styles:     s,
		width:      50,
		dispatched: make(map[string]struct{}),
	}
}

// Init initialises the search bar.
func (s *SearchBar) Init() tea.Cmd {
	return textinput.Blink
}

// Update feeds messages to the underlying textinput. An edit bumps the
// revision and either re-dispatches a known query immediately or arms
// the debounce timer.
func (s *SearchBar) Update(msg tea.Msg) (*SearchBar, tea.Cmd) {
	before := s.textinput.Value()

	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)

	after := s.textinput.Value()
	if after == before {
		return s, cmd
	}

	s.revision++
	changed := func() tea.Msg { return messages.QueryChanged{Text: after} }

	if _, seen := s.dispatched[after]; seen {
		return s, tea.Batch(cmd, changed, s.submitCmd())
	}

	revision := s.revision
	debounce := tea.Tick(DebounceDelay, func(time.Time) tea.Msg {
		return messages.DebounceElapsed{Revision: revision}
	})
	return s, tea.Batch(cmd, changed, debounce)
}

// Debounce handles an elapsed debounce timer. Stale revisions return
// no command.
func (s *SearchBar) Debounce(msg messages.DebounceElapsed) tea.Cmd {
	if msg.Revision != s.revision {
		return nil
	}
	return s.submitCmd()
}

// Submit dispatches the current query immediately, cancelling any
// pending debounce.
func (s *SearchBar) Submit() tea.Cmd {
	s.revision++
	return s.submitCmd()
}

func (s *SearchBar) submitCmd() tea.Cmd {
	text := s.textinput.Value()
	query := domain.ParseQuery(text)
	if query.IsEmpty() {
		return nil
	}
	s.dispatched[text] = struct{}{}
	return func() tea.Msg { return messages.SearchSubmitted{Query: query} }
}

// View renders the search bar.
func (s *SearchBar) View() string {
	label := s.styles.Title.Render("Search: ")
	field := s.styles.InputField.Render(s.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (s *SearchBar) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value without triggering a dispatch.
func (s *SearchBar) SetValue(value string) {
	s.revision++
	s.textinput.SetValue(value)
}

// Reset clears the input and cancels any pending debounce.
func (s *SearchBar) Reset() {
	s.revision++
	s.textinput.Reset()
}

// SetWidth sets the width of the input.
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	inputWidth := width - 14
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.textinput.Width = inputWidth
}
