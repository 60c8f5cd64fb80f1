package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

// fakeBackend serves three matches in pages of two.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := searchResponse{Total: 3}
		start := 0
		if req.Token != "" {
			start, _ = strconv.Atoi(req.Token)
		}
		for i := start; i < start+2 && i < 3; i++ {
			resp.Items = append(resp.Items, struct {
				Conversation string `json:"conversation"`
				Message      int64  `json:"message"`
			}{Conversation: req.Conversation, Message: int64(i + 1)})
		}
		if start+2 < 3 {
			resp.NextToken = strconv.Itoa(start + 2)
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func collect(s *Session) chan domain.ResultPage {
	pages := make(chan domain.ResultPage, 8)
	s.OnPage(func(p domain.ResultPage) { pages <- p })
	return pages
}

func waitPage(t *testing.T, pages chan domain.ResultPage) domain.ResultPage {
	t.Helper()
	select {
	case p := <-pages:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for page")
		return domain.ResultPage{}
	}
}

func TestRemoteSessionPaginates(t *testing.T) {
	server := fakeBackend(t)
	defer server.Close()

	session := NewSession(context.Background(), "conv", Options{
		BaseURL: server.URL,
		Token:   "secret",
	})
	pages := collect(session)

	session.Search(domain.SearchQuery{Text: "hello"}, 3)

	first := waitPage(t, pages)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, uint64(3), first.Epoch)
	assert.NotEmpty(t, first.NextToken)
	require.Len(t, first.Items, 2)
	assert.Equal(t, domain.MessageID(1), first.Items[0].Message)

	session.SearchMore()
	second := waitPage(t, pages)
	require.Len(t, second.Items, 1)
	assert.Equal(t, domain.MessageID(3), second.Items[0].Message)
	// The engine sees one stable token per query stream.
	assert.Equal(t, first.NextToken, second.NextToken)

	// Exhausted stream: no request is made.
	session.SearchMore()
	select {
	case p := <-pages:
		t.Fatalf("unexpected page after exhaustion: %+v", p)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoteSessionFreshSearchRotatesStream(t *testing.T) {
	server := fakeBackend(t)
	defer server.Close()

	session := NewSession(context.Background(), "conv", Options{
		BaseURL: server.URL,
		Token:   "secret",
	})
	pages := collect(session)

	session.Search(domain.SearchQuery{Text: "one"}, 1)
	first := waitPage(t, pages)

	session.Search(domain.SearchQuery{Text: "two"}, 2)
	second := waitPage(t, pages)

	assert.NotEqual(t, first.NextToken, second.NextToken)
	assert.Equal(t, uint64(2), second.Epoch)
}

func TestRemoteSessionBackendErrorProducesNoPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	session := NewSession(context.Background(), "conv", Options{
		BaseURL: server.URL,
		Token:   "secret",
	})
	pages := collect(session)

	session.Search(domain.SearchQuery{Text: "hello"}, 1)

	select {
	case p := <-pages:
		t.Fatalf("unexpected page from failing backend: %+v", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRemoteSessionDispatchHook(t *testing.T) {
	server := fakeBackend(t)
	defer server.Close()

	dispatched := make(chan func(), 1)
	session := NewSession(context.Background(), "conv", Options{
		BaseURL:  server.URL,
		Token:    "secret",
		Dispatch: func(fn func()) { dispatched <- fn },
	})
	pages := collect(session)

	session.Search(domain.SearchQuery{Text: "hello"}, 1)

	select {
	case fn := <-dispatched:
		fn()
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch hook never invoked")
	}
	page := waitPage(t, pages)
	assert.Len(t, page.Items, 2)
}
