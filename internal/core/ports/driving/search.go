package driving

import (
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// SearchController is the surface the UI layer drives: it submits
// queries, pulls the aggregated result list, and moves the "index N
// of total" navigation cursor. All calls return immediately; effects
// arrive through the registered event callbacks.
type SearchController interface {
	// Search resets all per-query state and dispatches a fresh query
	// to every backend source. An empty query is a silent no-op.
	Search(query domain.SearchQuery)

	// SearchMore requests the next page from the currently active
	// source. A no-op once the list is fully loaded.
	SearchMore()

	// Results returns a read-only view of the aggregated result list.
	Results() domain.FoundMessages

	// Show requests navigation to the 0-based result index. Indexes
	// beyond the loaded window trigger a page fetch and are replayed
	// when the page arrives; out-of-range requests on a fully loaded
	// list are dropped.
	Show(index int)

	// Next and Previous move the 1-based cursor. Both are no-ops when
	// the corresponding direction is disabled.
	Next()
	Previous()

	// SelectItem force-positions the cursor on a result the user
	// picked directly from the list. Unknown refs are ignored.
	SelectItem(ref domain.MessageRef)

	// Current returns the 1-based cursor position, 0 when none.
	Current() int

	// Total returns the combined result count, domain.TotalUnknown
	// while any source has not reported.
	Total() int

	// CanNext and CanPrevious report navigation enablement.
	CanNext() bool
	CanPrevious() bool

	// OnUpdated registers a callback fired after a fresh search (or a
	// total reconciliation) replaced the aggregate; consumers redraw.
	OnUpdated(fn func())

	// OnPageAppended registers a callback fired after a continuation
	// page was folded in; consumers append rather than redraw.
	OnPageAppended(fn func())

	// OnCursorChanged registers a callback fired whenever the cursor
	// position or total changes.
	OnCursorChanged(fn func(current, total int))

	// OnResolved registers a callback fired when a Show request
	// resolves to a concrete message to navigate to.
	OnResolved(fn func(ref domain.MessageRef))
}
