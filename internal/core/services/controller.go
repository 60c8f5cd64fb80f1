package services

import (
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driving"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// Ensure SearchController implements the interface.
var _ driving.SearchController = (*SearchController)(nil)

// SearchController binds the aggregator and the navigation cursor into
// the single surface the UI layer drives.
type SearchController struct {
	agg    *Aggregator
	cursor *Cursor
}

// NewSearchController creates a controller over a primary session and
// an optional (nil-able) secondary session for migrated history.
func NewSearchController(primary, secondary driven.SearchSession) *SearchController {
	agg := NewAggregator(primary, secondary)
	return &SearchController{
		agg:    agg,
		cursor: NewCursor(agg),
	}
}

// Search dispatches a fresh query, clearing all state from the
// previous one. An empty query is a silent no-op.
func (s *SearchController) Search(query domain.SearchQuery) {
	if query.IsEmpty() {
		return
	}
	s.cursor.Reset()
	s.agg.Search(query)
}

// SearchMore requests the next page from the active source.
func (s *SearchController) SearchMore() {
	s.agg.SearchMore()
}

// Results returns the aggregated result list.
func (s *SearchController) Results() domain.FoundMessages {
	return s.agg.Results()
}

// Show requests navigation to the 0-based result index.
func (s *SearchController) Show(index int) {
	s.cursor.Show(index)
}

// Next advances the cursor.
func (s *SearchController) Next() {
	s.cursor.Next()
}

// Previous moves the cursor back.
func (s *SearchController) Previous() {
	s.cursor.Previous()
}

// SelectItem positions the cursor on a result picked directly from the
// list, reverse-mapping the ref to its 1-based position. Refs not in
// the current result set are ignored.
func (s *SearchController) SelectItem(ref domain.MessageRef) {
	for i, item := range s.agg.Results().Items {
		if item == ref {
			s.cursor.SetCurrent(i + 1)
			return
		}
	}
	logger.Debug("SearchController: selected ref %s not in results", ref)
}

// Current returns the 1-based cursor position.
func (s *SearchController) Current() int {
	return s.cursor.Current()
}

// Total returns the combined result count.
func (s *SearchController) Total() int {
	return s.cursor.Total()
}

// CanNext reports whether the cursor can advance.
func (s *SearchController) CanNext() bool {
	return s.cursor.CanNext()
}

// CanPrevious reports whether the cursor can go back.
func (s *SearchController) CanPrevious() bool {
	return s.cursor.CanPrevious()
}

// OnUpdated registers a redraw callback.
func (s *SearchController) OnUpdated(fn func()) {
	s.agg.OnUpdated(fn)
}

// OnPageAppended registers an append callback.
func (s *SearchController) OnPageAppended(fn func()) {
	s.agg.OnPageAppended(fn)
}

// OnCursorChanged registers a cursor movement callback.
func (s *SearchController) OnCursorChanged(fn func(current, total int)) {
	s.cursor.OnChanged(fn)
}

// OnResolved registers a navigation resolution callback.
func (s *SearchController) OnResolved(fn func(ref domain.MessageRef)) {
	s.cursor.OnResolved(fn)
}
