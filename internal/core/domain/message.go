package domain

import (
	"fmt"
	"time"
)

// ConversationID identifies a conversation (direct chat, group, or channel).
type ConversationID string

// MessageID identifies a message within its conversation.
type MessageID int64

// PeerID identifies a message sender.
type PeerID string

// MessageRef is an opaque handle to a message in a conversation.
// The search engine orders and navigates refs; it never inspects content.
type MessageRef struct {
	// Conversation is the conversation the message belongs to.
	Conversation ConversationID

	// Message is the message id within the conversation.
	Message MessageID
}

// IsZero reports whether the ref is the zero value.
func (r MessageRef) IsZero() bool {
	return r.Conversation == "" && r.Message == 0
}

// String returns a display form like "conv-a/42".
func (r MessageRef) String() string {
	return fmt.Sprintf("%s/%d", r.Conversation, r.Message)
}

// Message is a stored chat message. Only the store adapters and the UI
// work with full messages; the engine handles refs.
type Message struct {
	// Ref locates the message.
	Ref MessageRef

	// Sender is the peer that sent the message.
	Sender PeerID

	// SentAt is the send timestamp.
	SentAt time.Time

	// Body is the plain message text.
	Body string
}
