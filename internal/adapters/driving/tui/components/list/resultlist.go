// Package list provides the search result list for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/lukejohnsonrp/convofind/internal/adapters/driving/tui/styles"
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// ResultList displays hydrated search matches, newest first. Selection
// tracks the navigation cursor: row i corresponds to cursor position
// i+1.
type ResultList struct {
	items    []domain.Message
	selected int
	styles   *styles.Styles
	width    int
	height   int

	// start is the first row of the last rendered window, kept for
	// mapping screen rows back to items.
	start int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// SetItems replaces the list contents and clamps the selection.
func (r *ResultList) SetItems(items []domain.Message) {
	r.items = items
	if r.selected >= len(items) {
		r.selected = 0
	}
}

// AppendItems extends the list in place.
func (r *ResultList) AppendItems(items []domain.Message) {
	r.items = append(r.items, items...)
}

// Len returns the number of loaded rows.
func (r *ResultList) Len() int {
	return len(r.items)
}

// SelectedIndex returns the 0-based selected row.
func (r *ResultList) SelectedIndex() int {
	return r.selected
}

// Selected returns the selected message, if any row is loaded.
func (r *ResultList) Selected() (domain.Message, bool) {
	if r.selected < 0 || r.selected >= len(r.items) {
		return domain.Message{}, false
	}
	return r.items[r.selected], true
}

// Select moves the selection to a loaded row; out-of-range is ignored.
func (r *ResultList) Select(index int) {
	if index >= 0 && index < len(r.items) {
		r.selected = index
	}
}

// SelectRef moves the selection to the row holding ref, reporting
// whether it was found.
func (r *ResultList) SelectRef(ref domain.MessageRef) bool {
	for i := range r.items {
		if r.items[i].Ref == ref {
			r.selected = i
			return true
		}
	}
	return false
}

// SetSize sets the render dimensions.
func (r *ResultList) SetSize(width, height int) {
	r.width = width
	r.height = height
}

// View renders the visible window of the list.
func (r *ResultList) View() string {
	if len(r.items) == 0 {
		return r.styles.Muted.Render("No results")
	}

	visible := r.height - 1
	if visible < 1 {
		visible = 1
	}

	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	r.start = start
	end := start + visible
	if end > len(r.items) {
		end = len(r.items)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, r.renderRow(i))
	}
	return strings.Join(lines, "\n")
}

// RefAt maps a row of the last rendered window to the ref shown there.
func (r *ResultList) RefAt(viewRow int) (domain.MessageRef, bool) {
	if viewRow < 0 {
		return domain.MessageRef{}, false
	}
	index := r.start + viewRow
	if index >= len(r.items) {
		return domain.MessageRef{}, false
	}
	return r.items[index].Ref, true
}

// renderRow formats one match: indicator, sender, timestamp, preview.
func (r *ResultList) renderRow(index int) string {
	m := &r.items[index]

	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	sender := string(m.Sender)
	if sender == "" {
		sender = "(unknown)"
	}
	when := m.SentAt.Format("2006-01-02 15:04")

	preview := strings.ReplaceAll(m.Body, "\n", " ")
	maxPreview := r.width - len(sender) - len(when) - 8
	if maxPreview < 10 {
		maxPreview = 10
	}
	if len(preview) > maxPreview {
		preview = preview[:maxPreview-1] + "…"
	}

	row := fmt.Sprintf("%s%s  %s  %s",
		indicator,
		r.styles.Sender.Render(sender),
		r.styles.Muted.Render(when),
		r.styles.Normal.Render(preview),
	)
	if index == r.selected {
		return r.styles.Selected.Render(row)
	}
	return row
}
