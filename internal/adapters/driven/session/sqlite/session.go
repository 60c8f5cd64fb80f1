package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// Ensure Session implements the interface.
var _ driven.SearchSession = (*Session)(nil)

// Session is a paginated search stream over one conversation in a
// Store. Matching is case-insensitive substring via LIKE; rank order
// is newest first. The database is local, so pages are delivered
// synchronously on the calling goroutine.
//
// Query failures are logged and produce no page event; the engine
// stays in its last-known-good state.
type Session struct {
	ctx          context.Context
	store        *Store
	conversation domain.ConversationID
	pageSize     int

	handler func(domain.ResultPage)

	query  domain.SearchQuery
	offset int
	total  int
	token  string
	epoch  uint64
}

// NewSession creates a session over one conversation.
func NewSession(ctx context.Context, store *Store, conversation domain.ConversationID, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Session{
		ctx:          ctx,
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

	total, err := s.countMatches(query)
	if err != nil {
		logger.Warn("sqlite session %s: count failed: %v", s.conversation, err)
		return
	}

	s.query = query
	s.total = total
	s.offset = 0
	s.token = uuid.NewString()
	s.epoch = epoch

	logger.Debug("sqlite session %s: %d matches for %q", s.conversation, total, query.Text)
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
	items, err := s.fetchPage()
	if err != nil {
		logger.Warn("sqlite session %s: page fetch failed: %v", s.conversation, err)
		return
	}

	page := domain.ResultPage{
		Items:     items,
		Total:     s.total,
		NextToken: s.token,
		Epoch:     s.epoch,
	}
	s.offset += len(items)
	s.handler(page)
}

func (s *Session) countMatches(query domain.SearchQuery) (int, error) {
	where, args := matchClause(s.conversation, query)

	var total int
	row := s.store.db.QueryRowContext(s.ctx,
		"SELECT COUNT(*) FROM messages WHERE "+where, args...)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("counting matches: %w", err)
	}
	return total, nil
}

func (s *Session) fetchPage() ([]domain.MessageRef, error) {
	where, args := matchClause(s.conversation, s.query)
	args = append(args, s.pageSize, s.offset)

	rows, err := s.store.db.QueryContext(s.ctx,
		`SELECT message_id FROM messages WHERE `+where+`
		 ORDER BY sent_at DESC, message_id DESC
		 LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying page: %w", err)
	}
	defer rows.Close()

	var items []domain.MessageRef
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning message id: %w", err)
		}
		items = append(items, domain.MessageRef{
			Conversation: s.conversation,
			Message:      domain.MessageID(id),
		})
	}
	return items, rows.Err()
}

// matchClause builds the WHERE clause shared by count and page queries.
func matchClause(conversation domain.ConversationID, query domain.SearchQuery) (string, []any) {
	clauses := []string{"conversation_id = ?"}
	args := []any{string(conversation)}

	if query.Text != "" {
		clauses = append(clauses, "body LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(query.Text)+"%")
	}
	if query.From != "" {
		clauses = append(clauses, "sender = ?")
		args = append(args, string(query.From))
	}
	return strings.Join(clauses, " AND "), args
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
