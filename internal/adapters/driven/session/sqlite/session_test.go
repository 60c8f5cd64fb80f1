package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store *Store, conv domain.ConversationID, msgs ...domain.Message) {
	t.Helper()
	ctx := context.Background()
	for _, m := range msgs {
		m.Ref.Conversation = conv
		require.NoError(t, store.Add(ctx, m))
	}
}

func msg(id int, sender domain.PeerID, body string) domain.Message {
	return domain.Message{
		Ref:    domain.MessageRef{Message: domain.MessageID(id)},
		Sender: sender,
		SentAt: time.Unix(int64(1000+id), 0),
		Body:   body,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed(t, store, "conv", msg(1, "alice", "hello there"))

	got, err := store.Get(ctx, domain.MessageRef{Conversation: "conv", Message: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.PeerID("alice"), got.Sender)
	assert.Equal(t, "hello there", got.Body)

	_, err = store.Get(ctx, domain.MessageRef{Conversation: "conv", Message: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStoreConversationLinks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pred, err := store.MigratedFrom(ctx, "conv")
	require.NoError(t, err)
	assert.Empty(t, pred)

	require.NoError(t, store.SetMigratedFrom(ctx, "conv", "old-conv"))

	pred, err = store.MigratedFrom(ctx, "conv")
	require.NoError(t, err)
	assert.Equal(t, domain.ConversationID("old-conv"), pred)
}

func TestSessionPaginatesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "conv",
		msg(1, "alice", "morning"),
		msg(2, "bob", "hello morning"),
		msg(3, "alice", "bye"),
		msg(4, "bob", "morning again"),
	)

	session := NewSession(context.Background(), store, "conv", 2)
	var pages []domain.ResultPage
	session.OnPage(func(p domain.ResultPage) { pages = append(pages, p) })

	session.Search(domain.SearchQuery{Text: "morning"}, 7)

	require.Len(t, pages, 1)
	assert.Equal(t, 3, pages[0].Total)
	assert.Equal(t, uint64(7), pages[0].Epoch)
	require.Len(t, pages[0].Items, 2)
	assert.Equal(t, domain.MessageID(4), pages[0].Items[0].Message)
	assert.Equal(t, domain.MessageID(2), pages[0].Items[1].Message)

	session.SearchMore()
	require.Len(t, pages, 2)
	assert.Equal(t, pages[0].NextToken, pages[1].NextToken)
	require.Len(t, pages[1].Items, 1)
	assert.Equal(t, domain.MessageID(1), pages[1].Items[0].Message)

	session.SearchMore()
	assert.Len(t, pages, 2)
}

func TestSessionSenderFilter(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "conv",
		msg(1, "alice", "morning"),
		msg(2, "bob", "morning"),
	)

	session := NewSession(context.Background(), store, "conv", 10)
	var pages []domain.ResultPage
	session.OnPage(func(p domain.ResultPage) { pages = append(pages, p) })

	session.Search(domain.SearchQuery{Text: "morning", From: "bob"}, 1)

	require.Len(t, pages, 1)
	require.Len(t, pages[0].Items, 1)
	assert.Equal(t, domain.MessageID(2), pages[0].Items[0].Message)
}

func TestSessionEscapesLikeWildcards(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "conv",
		msg(1, "alice", "literal 100% done"),
		msg(2, "bob", "one hundred percent done"),
	)

	session := NewSession(context.Background(), store, "conv", 10)
	var pages []domain.ResultPage
	session.OnPage(func(p domain.ResultPage) { pages = append(pages, p) })

	session.Search(domain.SearchQuery{Text: "100%"}, 1)

	require.Len(t, pages, 1)
	require.Len(t, pages[0].Items, 1)
	assert.Equal(t, domain.MessageID(1), pages[0].Items[0].Message)
}

func TestSessionIgnoresOtherConversations(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "conv", msg(1, "alice", "morning"))
	seed(t, store, "other", msg(1, "alice", "morning"))

	session := NewSession(context.Background(), store, "conv", 10)
	var pages []domain.ResultPage
	session.OnPage(func(p domain.ResultPage) { pages = append(pages, p) })

	session.Search(domain.SearchQuery{Text: "morning"}, 1)

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Total)
	assert.Equal(t, domain.ConversationID("conv"), pages[0].Items[0].Conversation)
}
