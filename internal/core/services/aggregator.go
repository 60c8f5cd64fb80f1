package services

import (
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// Aggregator merges the paginated result streams of a primary backend
// session and an optional secondary session for the conversation the
// history was migrated from, exposing one concatenated, incrementally
// growing result list with a running combined total.
//
// Secondary results are withheld until the primary source has delivered
// exactly as many items as its own total; only then does the aggregator
// switch over and fold the withheld first page in. The combined total is
// published only once both sources have reported their own totals.
//
// The aggregator is single-threaded: sessions deliver pages on the same
// logical thread as its public calls, so no locking is needed.
type Aggregator struct {
	primary   driven.SearchSession
	secondary driven.SearchSession // nil when the conversation has no predecessor

	concated      domain.FoundMessages
	migratedFirst domain.ResultPage // withheld until primary exhaustion

	waitingForTotal bool
	isFull          bool // primary exhausted, secondary stream active
	epoch           uint64

	updated  []func()
	appended []func()
}

// NewAggregator creates an aggregator over the given sessions.
// secondary may be nil; the aggregator then behaves as primary-only.
func NewAggregator(primary driven.SearchSession, secondary driven.SearchSession) *Aggregator {
	a := &Aggregator{
		primary:       primary,
		secondary:     secondary,
		concated:      domain.NewFoundMessages(),
		migratedFirst: domain.ResultPage{Total: domain.TotalUnknown},
	}

	primary.OnPage(a.handlePrimaryPage)
	if secondary != nil {
		secondary.OnPage(a.handleSecondaryPage)
	}

	return a
}

// Reset clears all per-query state and bumps the epoch so that any
// in-flight responses from the superseded query are dropped on arrival.
// Idempotent.
func (a *Aggregator) Reset() {
	a.concated = domain.NewFoundMessages()
	a.migratedFirst = domain.ResultPage{Total: domain.TotalUnknown}
	a.waitingForTotal = false
	a.isFull = false
	a.epoch++
}

// Search resets and dispatches a fresh query to both sources.
// An empty query is a silent no-op.
func (a *Aggregator) Search(query domain.SearchQuery) {
	if query.IsEmpty() {
		logger.Debug("Aggregator: empty query ignored")
		return
	}

	a.Reset()
	logger.Debug("Aggregator: search %q from=%q epoch=%d", query.Text, query.From, a.epoch)

	// Dispatch the secondary first so its flag is armed before any
	// synchronous primary delivery can check it.
	if a.secondary != nil {
		a.waitingForTotal = true
		a.secondary.Search(query, a.epoch)
	}
	a.primary.Search(query, a.epoch)
}

// SearchMore requests the next page from the active source: the
// secondary once the primary is exhausted, the primary otherwise.
// A no-op once every known result has been loaded.
func (a *Aggregator) SearchMore() {
	if a.concated.IsFullyLoaded() {
		return
	}
	if a.secondary != nil && a.isFull {
		a.secondary.SearchMore()
	} else {
		a.primary.SearchMore()
	}
}

// Results returns a read-only view of the aggregated results.
func (a *Aggregator) Results() domain.FoundMessages {
	return a.concated
}

// OnUpdated registers a callback fired when a fresh search replaced the
// aggregate, or when the combined total was finally reconciled.
func (a *Aggregator) OnUpdated(fn func()) {
	a.updated = append(a.updated, fn)
}

// OnPageAppended registers a callback fired when a continuation page
// was folded into the aggregate.
func (a *Aggregator) OnPageAppended(fn func()) {
	a.appended = append(a.appended, fn)
}

func (a *Aggregator) handlePrimaryPage(page domain.ResultPage) {
	if page.Epoch != a.epoch {
		logger.Debug("Aggregator: dropping stale primary page (epoch %d, current %d)", page.Epoch, a.epoch)
		return
	}

	if page.NextToken == a.concated.NextToken {
		// Continuation of the current stream.
		a.appendItems(page.Items)
		a.checkFull(page)
		a.fireAppended()
		return
	}

	// First page of a fresh query replaces the aggregate wholesale.
	a.concated = domain.FoundMessages{
		Items:     append([]domain.MessageRef(nil), page.Items...),
		Total:     page.Total,
		NextToken: page.NextToken,
	}
	a.checkFull(page)
	a.checkWaitingForTotal()
}

func (a *Aggregator) handleSecondaryPage(page domain.ResultPage) {
	if page.Epoch != a.epoch {
		logger.Debug("Aggregator: dropping stale secondary page (epoch %d, current %d)", page.Epoch, a.epoch)
		return
	}

	// Once the primary is exhausted, secondary pages append directly.
	// Before that, the first page stays withheld in migratedFirst.
	if a.isFull {
		a.appendItems(page.Items)
	}

	if page.NextToken == a.migratedFirst.NextToken {
		a.fireAppended()
		return
	}

	a.migratedFirst = domain.ResultPage{
		Items:     append([]domain.MessageRef(nil), page.Items...),
		Total:     page.Total,
		NextToken: page.NextToken,
		Epoch:     page.Epoch,
	}
	a.checkWaitingForTotal()
}

// checkFull detects primary exhaustion and performs the one-time
// switch-over: the withheld secondary first page is folded in and the
// secondary stream becomes the active one.
func (a *Aggregator) checkFull(page domain.ResultPage) {
	if a.isFull {
		return
	}
	if page.Total == len(a.concated.Items) {
		a.isFull = true
		a.appendItems(a.migratedFirst.Items)
		logger.Debug("Aggregator: primary exhausted at %d, folded %d withheld items",
			page.Total, len(a.migratedFirst.Items))
	}
}

// checkWaitingForTotal publishes the combined total only once both
// sources have reported, preventing a premature "last page" reading.
func (a *Aggregator) checkWaitingForTotal() {
	if a.waitingForTotal {
		if a.concated.Total >= 0 && a.migratedFirst.Total >= 0 {
			a.waitingForTotal = false
			a.concated.Total += a.migratedFirst.Total
			a.fireUpdated()
		}
		return
	}
	a.fireUpdated()
}

func (a *Aggregator) appendItems(items []domain.MessageRef) {
	a.concated.Items = append(a.concated.Items, items...)
}

func (a *Aggregator) fireUpdated() {
	for _, fn := range a.updated {
		fn()
	}
}

func (a *Aggregator) fireAppended() {
	for _, fn := range a.appended {
		fn()
	}
}
