// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// QueryChanged is sent when the search input text changes. The result
// list is hidden until the edited query is actually submitted.
type QueryChanged struct {
	Text string
}

// DebounceElapsed fires when the typing debounce timer for a given
// input revision expires. Stale revisions are ignored.
type DebounceElapsed struct {
	Revision int
}

// SearchSubmitted carries a parsed query ready for dispatch.
type SearchSubmitted struct {
	Query domain.SearchQuery
}

// ResultsUpdated signals that the merged result list was replaced or
// that its combined total became known.
type ResultsUpdated struct {
	Total int
}

// PageAppended signals that a continuation page extended the merged
// result list in place.
type PageAppended struct{}

// CursorMoved carries the navigation cursor position, 1-based, with 0
// meaning no selection.
type CursorMoved struct {
	Current int
	Total   int
}

// JumpResolved signals that navigation landed on a loaded message.
type JumpResolved struct {
	Ref domain.MessageRef
}

// Invoke carries a closure from an asynchronous backend onto the
// update loop, keeping the engine single-threaded.
type Invoke struct {
	Fn func()
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
