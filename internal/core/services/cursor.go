package services

import (
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// Cursor is the 1-based "index N of total" navigation state machine
// over the aggregated result list. A request for an index that has not
// been loaded yet is recorded as a pending jump keyed by the current
// continuation token and replayed once a page of the same stream lands.
type Cursor struct {
	agg *Aggregator

	current int // 1-based, 0 = none
	total   int // domain.TotalUnknown until reported

	pendingIndex int // 0-based target, -1 = none
	pendingToken string

	changed  []func(current, total int)
	resolved []func(ref domain.MessageRef)
}

// NewCursor creates a cursor observing the given aggregator.
func NewCursor(agg *Aggregator) *Cursor {
	c := &Cursor{
		agg:          agg,
		total:        domain.TotalUnknown,
		pendingIndex: -1,
	}

	agg.OnUpdated(func() {
		c.SetTotal(agg.Results().Total)
	})
	agg.OnPageAppended(func() {
		c.replayPending()
	})

	return c
}

// Reset clears the cursor and any pending jump. Called on every fresh
// query so a stale jump can never leak into the next result set.
func (c *Cursor) Reset() {
	c.current = 0
	c.total = domain.TotalUnknown
	c.clearPending()
}

// SetTotal publishes a new total and rewinds the cursor to the first
// result, or to none when there are no results.
func (c *Cursor) SetTotal(total int) {
	c.total = total
	if total == 0 {
		c.setCurrent(0, true)
	} else {
		c.setCurrent(1, true)
	}
}

// SetCurrent force-positions the cursor. Values are accepted as-is;
// out-of-range positions simply disable both directions.
func (c *Cursor) SetCurrent(current int) {
	c.setCurrent(current, true)
}

// Current returns the 1-based cursor position, 0 when none.
func (c *Cursor) Current() int {
	return c.current
}

// Total returns the observed total, domain.TotalUnknown while unknown.
func (c *Cursor) Total() int {
	return c.total
}

// CanNext reports whether the cursor can advance.
func (c *Cursor) CanNext() bool {
	return c.current > 0 && c.total >= 0 && c.current < c.total
}

// CanPrevious reports whether the cursor can go back.
func (c *Cursor) CanPrevious() bool {
	return c.current > 1
}

// Next advances the cursor by one and navigates there.
// A no-op when advancing is disabled.
func (c *Cursor) Next() {
	if !c.CanNext() {
		return
	}
	c.setCurrent(c.current+1, true)
	c.Show(c.current - 1)
}

// Previous moves the cursor back by one and navigates there.
// A no-op when going back is disabled.
func (c *Cursor) Previous() {
	if !c.CanPrevious() {
		return
	}
	c.setCurrent(c.current-1, true)
	c.Show(c.current - 1)
}

// Show requests navigation to the 0-based result index.
//
// Reaching the last loaded item already prefetches the next page, so
// stepping forward stays ahead of the network. An index beyond the
// loaded window records a pending jump unless the list is fully
// loaded; negative indexes are dropped.
func (c *Cursor) Show(index int) {
	found := c.agg.Results()
	size := len(found.Items)

	if index >= size-1 && size != found.Total {
		c.agg.SearchMore()
		// A synchronous source may have delivered the page already.
		found = c.agg.Results()
		size = len(found.Items)
	}
	if index < 0 {
		return
	}
	if index >= size {
		if found.IsFullyLoaded() {
			return
		}
		c.pendingIndex = index
		c.pendingToken = found.NextToken
		logger.Debug("Cursor: jump to %d deferred (loaded %d of %d)", index, size, found.Total)
		return
	}

	c.clearPending()
	c.setCurrent(index+1, false)
	c.fireResolved(found.Items[index])
}

// OnChanged registers a callback fired whenever position or total change.
func (c *Cursor) OnChanged(fn func(current, total int)) {
	c.changed = append(c.changed, fn)
}

// OnResolved registers a callback fired when a Show request resolves
// to a concrete message ref.
func (c *Cursor) OnResolved(fn func(ref domain.MessageRef)) {
	c.resolved = append(c.resolved, fn)
}

// replayPending retries a deferred jump after a page of the same token
// lineage has been folded into the aggregate.
func (c *Cursor) replayPending() {
	if c.pendingIndex < 0 {
		return
	}
	if c.pendingToken != c.agg.Results().NextToken {
		return
	}
	index := c.pendingIndex
	c.clearPending()
	c.Show(index)
}

func (c *Cursor) clearPending() {
	c.pendingIndex = -1
	c.pendingToken = ""
}

func (c *Cursor) setCurrent(current int, force bool) {
	if !force && c.current == current {
		return
	}
	c.current = current
	for _, fn := range c.changed {
		fn(c.current, c.total)
	}
}

func (c *Cursor) fireResolved(ref domain.MessageRef) {
	for _, fn := range c.resolved {
		fn(ref)
	}
}
