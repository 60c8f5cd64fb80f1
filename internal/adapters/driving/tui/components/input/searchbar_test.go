package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/messages"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

func typeText(bar *SearchBar, text string) tea.Cmd {
	var last tea.Cmd
	for _, r := range text {
		_, last = bar.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return last
}

// drain executes a command tree and collects every produced message,
// skipping timers.
func drain(cmd tea.Cmd, out *[]tea.Msg) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(c, out)
		}
	default:
		*out = append(*out, msg)
	}
}

func TestNewSearchBar(t *testing.T) {
	bar := NewSearchBar(nil)

	require.NotNil(t, bar)
	assert.Equal(t, "", bar.Value())
	assert.NotNil(t, bar.styles)
}

func TestTypingArmsDebounce(t *testing.T) {
	bar := NewSearchBar(nil)

	cmd := typeText(bar, "hi")
	assert.NotNil(t, cmd)
	assert.Equal(t, "hi", bar.Value())
}

func TestDebounceDispatchesCurrentRevision(t *testing.T) {
	bar := NewSearchBar(nil)
	typeText(bar, "hello")

	cmd := bar.Debounce(messages.DebounceElapsed{Revision: bar.revision})
	require.NotNil(t, cmd)

	submitted, ok := cmd().(messages.SearchSubmitted)
	require.True(t, ok)
	assert.Equal(t, domain.SearchQuery{Text: "hello"}, submitted.Query)
}

func TestDebounceIgnoresStaleRevision(t *testing.T) {
	bar := NewSearchBar(nil)
	typeText(bar, "hel")
	stale := bar.revision
	typeText(bar, "lo")

	assert.Nil(t, bar.Debounce(messages.DebounceElapsed{Revision: stale}))
}

func TestSubmitParsesSenderFilter(t *testing.T) {
	bar := NewSearchBar(nil)
	bar.SetValue("from:alice hello")

	cmd := bar.Submit()
	require.NotNil(t, cmd)

	submitted, ok := cmd().(messages.SearchSubmitted)
	require.True(t, ok)
	assert.Equal(t, domain.SearchQuery{Text: "hello", From: "alice"}, submitted.Query)
}

func TestSubmitEmptyQueryIsNoOp(t *testing.T) {
	bar := NewSearchBar(nil)
	assert.Nil(t, bar.Submit())
}

func TestRepeatedQuerySkipsDebounce(t *testing.T) {
	bar := NewSearchBar(nil)
	bar.SetValue("hello")
	require.NotNil(t, bar.Submit())

	// Re-typing a query that was already dispatched fires straight away.
	bar.Reset()
	bar.SetValue("hell")
	cmd := typeText(bar, "o")
	require.NotNil(t, cmd)

	var msgs []tea.Msg
	drain(cmd, &msgs)

	var gotChanged, gotSubmitted bool
	for _, msg := range msgs {
		switch m := msg.(type) {
		case messages.QueryChanged:
			gotChanged = true
			assert.Equal(t, "hello", m.Text)
		case messages.SearchSubmitted:
			gotSubmitted = true
			assert.Equal(t, domain.SearchQuery{Text: "hello"}, m.Query)
		}
	}
	assert.True(t, gotChanged)
	assert.True(t, gotSubmitted)
}
