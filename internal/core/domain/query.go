package domain

import "strings"

// SearchQuery is a free-text message query with an optional sender filter.
// A query is immutable once dispatched.
type SearchQuery struct {
	// Text is the free-text portion of the query.
	Text string

	// From restricts results to a single sender. Empty means no filter.
	From PeerID
}

// IsEmpty reports whether the query is degenerate: no text and no sender
// filter. Empty queries are never dispatched.
func (q SearchQuery) IsEmpty() bool {
	return q.Text == "" && q.From == ""
}

// Equal reports whether two queries match exactly on both fields.
func (q SearchQuery) Equal(other SearchQuery) bool {
	return q == other
}

// String renders the query in the same syntax ParseQuery accepts.
func (q SearchQuery) String() string {
	if q.From == "" {
		return q.Text
	}
	if q.Text == "" {
		return "from:" + string(q.From)
	}
	return "from:" + string(q.From) + " " + q.Text
}

// ParseQuery parses user-typed query text. A leading "from:peer" word
// becomes the sender filter; the remainder is the free-text query.
func ParseQuery(text string) SearchQuery {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "from:"); ok {
		sender, remainder, _ := strings.Cut(rest, " ")
		return SearchQuery{
			Text: strings.TrimSpace(remainder),
			From: PeerID(sender),
		}
	}
	return SearchQuery{Text: text}
}
