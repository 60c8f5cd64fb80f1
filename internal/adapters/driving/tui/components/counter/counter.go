// Package counter provides the "N of M" match counter bar for the TUI.
package counter

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/styles"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// Bar displays the navigation cursor position and the next/previous
// affordances. While the combined total is still unknown it shows
// nothing, so the count never flickers through intermediate values.
type Bar struct {
	styles  *styles.Styles
	current int
	total   int
	width   int
}

// NewBar creates a counter bar with no known total.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Bar{
		styles: s,
		total:  domain.TotalUnknown,
		width:  80,
	}
}

// SetCursor updates the displayed position. current is 1-based, 0
// meaning no selection; total may be domain.TotalUnknown.
func (b *Bar) SetCursor(current, total int) {
	b.current = current
	b.total = total
}

// Reset returns the bar to the unknown-total state.
func (b *Bar) Reset() {
	b.current = 0
	b.total = domain.TotalUnknown
}

// SetWidth sets the render width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Text returns the counter text: empty while the total is unknown,
// "no messages" for an empty result set, "N of M" otherwise.
func (b *Bar) Text() string {
	switch {
	case b.total < 0:
		return ""
	case b.total == 0:
		return "no messages"
	default:
		return fmt.Sprintf("%d of %d", b.current, b.total)
	}
}

// CanNext reports whether the next (older) affordance is enabled.
func (b *Bar) CanNext() bool {
	return b.current > 0 && b.current < b.total
}

// CanPrevious reports whether the previous (newer) affordance is enabled.
func (b *Bar) CanPrevious() bool {
	return b.current > 1
}

// View renders the counter text with the navigation arrows, muting a
// direction when it is disabled.
func (b *Bar) View() string {
	text := b.Text()
	if text == "" {
		return ""
	}

	arrow := func(glyph string, enabled bool) string {
		if enabled {
			return b.styles.Normal.Render(glyph)
		}
		return b.styles.Muted.Render(glyph)
	}

	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center,
		b.styles.Subtitle.Render(text),
		"  ",
		arrow("↑", b.CanPrevious()),
		" ",
		arrow("↓", b.CanNext()),
	)
}
