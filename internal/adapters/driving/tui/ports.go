// Package tui provides the interactive terminal interface for convofind.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"errors"

	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driving"
)

// Validation errors for missing ports.
var (
	ErrMissingSearchController = errors.New("search controller is required")
	ErrMissingMessageStore     = errors.New("message store is required")
)

// Ports aggregates everything the TUI needs from the core.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search drives queries and cursor navigation.
	Search driving.SearchController

	// Store hydrates result refs into renderable messages.
	Store driven.MessageStore

	// Theme names the colour theme to use; empty means default.
	Theme string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchController, store driven.MessageStore) *Ports {
	return &Ports{
		Search: search,
		Store:  store,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchController
	}
	if p.Store == nil {
		return ErrMissingMessageStore
	}
	return nil
}
