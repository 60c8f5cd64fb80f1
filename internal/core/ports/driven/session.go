package driven

import (
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// SearchSession is one paginated search stream against a single
// conversation backend. The aggregator owns up to two sessions:
// the current conversation and its optional migrated predecessor.
//
// Sessions are cooperative: Search and SearchMore return immediately
// and pages are delivered later by invoking the OnPage subscriber on
// the caller's logical thread. Backend failures surface as an absence
// of page events; retry and backoff are the session's own concern.
type SearchSession interface {
	// Search starts a fresh query. The epoch must be echoed back on
	// every page of the resulting stream.
	Search(query domain.SearchQuery, epoch uint64)

	// SearchMore requests the next page of the current query using the
	// session's internally tracked continuation token. A call with no
	// active query or no further pages is a no-op.
	SearchMore()

	// OnPage registers the page subscriber, replacing any previous one.
	OnPage(fn func(domain.ResultPage))
}
