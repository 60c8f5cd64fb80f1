// Package remote provides a search session backed by a remote search
// API over HTTP. Requests carry a bearer token and are throttled with
// a token bucket; responses re-enter the caller's event loop through a
// configurable dispatch hook so the engine stays single-threaded.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
	"github.com/lukejohnsonrp/convofind/internal/core/ports/driven"
	"github.com/lukejohnsonrp/convofind/internal/logger"
)

// Ensure Session implements the interface.
var _ driven.SearchSession = (*Session)(nil)

// RequestRate is the proactive throttle for search round-trips.
const RequestRate = 4 // requests per second

// searchRequest is the wire format of a search call.
type searchRequest struct {
	Conversation string `json:"conversation"`
	Query        string `json:"query"`
	From         string `json:"from,omitempty"`
	Token        string `json:"token,omitempty"`
}

// searchResponse is the wire format of a result page.
type searchResponse struct {
	Items []struct {
		Conversation string `json:"conversation"`
		Message      int64  `json:"message"`
	} `json:"items"`
	Total     int    `json:"total"`
	NextToken string `json:"next_token"`
}

// Options configures a remote session.
type Options struct {
	// BaseURL is the search API endpoint, e.g. "https://api.example.com".
	BaseURL string

	// Token is the bearer token presented on every request.
	Token string

	// Dispatch hands a completed response back to the engine's logical
	// thread. Defaults to calling the function directly.
	Dispatch func(fn func())

	// HTTPClient overrides the oauth2-wrapped default client.
	HTTPClient *http.Client
}

// Session is a paginated search stream against a remote search API for
// one conversation.
//
// The backend rotates its continuation token on every page; the engine
// instead keys a stream by one stable token, so the session exposes a
// per-query stream id and keeps the backend token to itself.
type Session struct {
	ctx          context.Context
	conversation domain.ConversationID
	baseURL      string
	client       *http.Client
	limiter      *rate.Limiter
	dispatch     func(fn func())

	handler func(domain.ResultPage)

	mu          sync.Mutex
	query       domain.SearchQuery
	streamToken string // exposed to the engine, stable per query
	wireToken   string // backend continuation token, rotates per page
	exhausted   bool
	epoch       uint64
}

// NewSession creates a remote session over one conversation.
func NewSession(ctx context.Context, conversation domain.ConversationID, opts Options) *Session {
	client := opts.HTTPClient
	if client == nil {
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		client = oauth2.NewClient(ctx, source)
	}

	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}

	return &Session{
		ctx:          ctx,
		conversation: conversation,
		baseURL:      opts.BaseURL,
		client:       client,
		limiter:      rate.NewLimiter(rate.Limit(RequestRate), 1),
		dispatch:     dispatch,
	}
}

// Search starts a fresh query over the conversation.
func (s *Session) Search(query domain.SearchQuery, epoch uint64) {
	s.mu.Lock()
	s.query = query
	s.streamToken = uuid.NewString()
	s.wireToken = ""
	s.exhausted = false
	s.epoch = epoch
	stream := s.streamToken
	s.mu.Unlock()

	s.issue(query, "", stream, epoch)
}

// SearchMore requests the next page of the current query.
func (s *Session) SearchMore() {
	s.mu.Lock()
	query := s.query
	stream := s.streamToken
	wire := s.wireToken
	exhausted := s.exhausted
	epoch := s.epoch
	s.mu.Unlock()

	if stream == "" || exhausted {
		return
	}
	s.issue(query, wire, stream, epoch)
}

// OnPage registers the page subscriber.
func (s *Session) OnPage(fn func(domain.ResultPage)) {
	s.handler = fn
}

func (s *Session) issue(query domain.SearchQuery, wireToken, streamToken string, epoch uint64) {
	go func() {
		page, next, err := s.roundTrip(query, wireToken)
		if err != nil {
			// Backend failures surface as an absence of page events.
			logger.Warn("remote session %s: %v", s.conversation, err)
			return
		}

		s.mu.Lock()
		// Ignore the continuation if a newer query replaced the stream.
		if s.streamToken == streamToken {
			s.wireToken = next
			s.exhausted = next == ""
		}
		s.mu.Unlock()

		page.NextToken = streamToken
		page.Epoch = epoch

		s.dispatch(func() {
			if s.handler != nil {
				s.handler(page)
			}
		})
	}()
}

func (s *Session) roundTrip(query domain.SearchQuery, wireToken string) (domain.ResultPage, string, error) {
	if err := s.limiter.Wait(s.ctx); err != nil {
		return domain.ResultPage{}, "", fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(searchRequest{
		Conversation: string(s.conversation),
		Query:        query.Text,
		From:         string(query.From),
		Token:        wireToken,
	})
	if err != nil {
		return domain.ResultPage{}, "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return domain.ResultPage{}, "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.ResultPage{}, "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ResultPage{}, "", fmt.Errorf("search request: unexpected status %s", resp.Status)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.ResultPage{}, "", fmt.Errorf("decoding response: %w", err)
	}

	items := make([]domain.MessageRef, 0, len(decoded.Items))
	for _, item := range decoded.Items {
		items = append(items, domain.MessageRef{
			Conversation: domain.ConversationID(item.Conversation),
			Message:      domain.MessageID(item.Message),
		})
	}

	return domain.ResultPage{Items: items, Total: decoded.Total}, decoded.NextToken, nil
}
