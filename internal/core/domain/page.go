package domain

// TotalUnknown marks a result count the backend has not reported yet.
const TotalUnknown = -1

// ResultPage is one round-trip's worth of results from a backend session.
type ResultPage struct {
	// Items are the page's results in backend rank order.
	Items []MessageRef

	// Total is the backend's count for the whole query,
	// or TotalUnknown until the backend finalises it.
	Total int

	// NextToken is the opaque continuation token. A session keeps one
	// token per query, so token equality identifies "next page of the
	// same stream" versus "first page of a new query".
	NextToken string

	// Epoch is stamped by the aggregator at dispatch and echoed back
	// by the session. Pages carrying a stale epoch are dropped.
	Epoch uint64
}

// FoundMessages is the aggregated, incrementally growing result list
// over the primary and optional secondary sources.
type FoundMessages struct {
	// Items preserves arrival order: primary rank order first,
	// then secondary rank order once the primary is exhausted.
	Items []MessageRef

	// Total is the combined count, or TotalUnknown while any
	// participating source has not reported its own total.
	Total int

	// NextToken is the token of the currently active page stream.
	NextToken string
}

// NewFoundMessages returns an empty aggregate with an unknown total.
func NewFoundMessages() FoundMessages {
	return FoundMessages{Total: TotalUnknown}
}

// IsFullyLoaded reports whether every known result has been fetched.
func (f FoundMessages) IsFullyLoaded() bool {
	return f.Total >= 0 && len(f.Items) >= f.Total
}
