package driven

import (
	"context"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// MessageStore provides access to stored conversation history.
// The engine navigates refs only; the UI hydrates refs through this
// port to render result rows.
type MessageStore interface {
	// Get returns the message for a ref.
	// Returns domain.ErrNotFound if the message does not exist.
	Get(ctx context.Context, ref domain.MessageRef) (*domain.Message, error)

	// Add stores a message.
	Add(ctx context.Context, msg domain.Message) error

	// Conversations lists the conversation ids with stored history.
	Conversations(ctx context.Context) ([]domain.ConversationID, error)

	// Close releases resources.
	Close() error
}
