// Package memory provides an in-memory conversation backend: a message
// store over a slice and a search session paginating over it. Used by
// tests and as the demo backend when no history database is configured.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// Ensure interfaces are implemented.
var (
	_ driven.SearchSession = (*Session)(nil)
	_ driven.MessageStore  = (*Store)(nil)
)

// Store is an in-memory message store.
type Store struct {
	mu       sync.RWMutex
	messages map[domain.MessageRef]domain.Message
	order    map[domain.ConversationID][]domain.MessageRef
	closed   bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		messages: make(map[domain.MessageRef]domain.Message),
		order:    make(map[domain.ConversationID][]domain.MessageRef),
	}
}

// Get returns the message for a ref.
func (s *Store) Get(_ context.Context, ref domain.MessageRef) (*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	msg, ok := s.messages[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &msg, nil
}

// Add stores a message, keeping per-conversation insertion order.
func (s *Store) Add(_ context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrStoreClosed
	}
	if _, exists := s.messages[msg.Ref]; !exists {
		s.order[msg.Ref.Conversation] = append(s.order[msg.Ref.Conversation], msg.Ref)
	}
	s.messages[msg.Ref] = msg
	return nil
}

// Conversations lists conversation ids with stored history.
func (s *Store) Conversations(_ context.Context) ([]domain.ConversationID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	ids := make([]domain.ConversationID, 0, len(s.order))
	for id := range s.order {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Close marks the store closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// conversation returns the refs of a conversation in stored order.
func (s *Store) conversation(id domain.ConversationID) []domain.MessageRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.MessageRef(nil), s.order[id]...)
}

// message is a lock-free helper for the session's match loop.
func (s *Store) message(ref domain.MessageRef) (domain.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msg, ok := s.messages[ref]
	return msg, ok
}

// Session is a paginated search stream over one conversation in a Store.
// Matching is case-insensitive substring; rank order is newest first.
// Pages are delivered synchronously on the calling goroutine, which
// keeps the engine's single-threaded model intact.
type Session struct {
	store        *Store
	conversation domain.ConversationID
	pageSize     int

	handler func(domain.ResultPage)

	matches []domain.MessageRef
	offset  int
	total   int
	token   string
	epoch   uint64
}

// NewSession creates a session over one conversation.
func NewSession(store *Store, conversation domain.ConversationID, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Session{
		store:        store,
		conversation: conversation,
		pageSize:     pageSize,
	}
}

// Search starts a fresh query over the conversation.
func (s *Session) Search(query domain.SearchQuery, epoch uint64) {
	if s.handler == nil {
		return
	}

	s.matches = s.match(query)
	s.total = len(s.matches)
	s.offset = 0
	s.token = uuid.NewString()
	s.epoch = epoch

	logger.Debug("memory session %s: %d matches for %q", s.conversation, s.total, query.Text)
	s.emitPage()
}

// SearchMore delivers the next page of the current query.
func (s *Session) SearchMore() {
	if s.handler == nil || s.token == "" {
		return
	}
	if s.offset >= s.total {
		return
	}
	s.emitPage()
}

// OnPage registers the page subscriber.
func (s *Session) OnPage(fn func(domain.ResultPage)) {
	s.handler = fn
}

func (s *Session) emitPage() {
	end := s.offset + s.pageSize
	if end > s.total {
		end = s.total
	}
	page := domain.ResultPage{
		Items:     append([]domain.MessageRef(nil), s.matches[s.offset:end]...),
		Total:     s.total,
		NextToken: s.token,
		Epoch:     s.epoch,
	}
	s.offset = end
	s.handler(page)
}

// match scans the conversation newest-first for messages matching the
// query text and sender filter.
func (s *Session) match(query domain.SearchQuery) []domain.MessageRef {
	order := s.store.conversation(s.conversation)
	needle := strings.ToLower(query.Text)

	var matches []domain.MessageRef
	for i := len(order) - 1; i >= 0; i-- {
		msg, ok := s.store.message(order[i])
		if !ok {
			continue
		}
		if query.From != "" && msg.Sender != query.From {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(msg.Body), needle) {
			continue
		}
		matches = append(matches, msg.Ref)
	}
	return matches
}
