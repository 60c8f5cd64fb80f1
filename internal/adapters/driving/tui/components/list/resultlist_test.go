package list

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

func item(id int, sender, body string) domain.Message {
	return domain.Message{
		Ref:    domain.MessageRef{Conversation: "conv", Message: domain.MessageID(id)},
		Sender: domain.PeerID(sender),
		SentAt: time.Unix(int64(1000+id), 0),
		Body:   body,
	}
}

func TestResultListSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems([]domain.Message{
		item(3, "alice", "newest"),
		item(2, "bob", "middle"),
		item(1, "alice", "oldest"),
	})

	got, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, domain.MessageID(3), got.Ref.Message)

	l.Select(2)
	assert.Equal(t, 2, l.SelectedIndex())

	// Out of range is ignored.
	l.Select(7)
	assert.Equal(t, 2, l.SelectedIndex())
	l.Select(-1)
	assert.Equal(t, 2, l.SelectedIndex())
}

func TestResultListSelectRef(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems([]domain.Message{
		item(3, "alice", "newest"),
		item(2, "bob", "middle"),
	})

	assert.True(t, l.SelectRef(domain.MessageRef{Conversation: "conv", Message: 2}))
	assert.Equal(t, 1, l.SelectedIndex())

	assert.False(t, l.SelectRef(domain.MessageRef{Conversation: "conv", Message: 99}))
	assert.Equal(t, 1, l.SelectedIndex())
}

func TestResultListAppendKeepsSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems([]domain.Message{item(2, "alice", "a")})
	l.Select(0)

	l.AppendItems([]domain.Message{item(1, "bob", "b")})

	assert.Equal(t, 2, l.Len())
	assert.Equal(t, 0, l.SelectedIndex())
}

func TestResultListSetItemsClampsSelection(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems([]domain.Message{item(1, "a", "x"), item(2, "b", "y"), item(3, "c", "z")})
	l.Select(2)

	l.SetItems([]domain.Message{item(4, "d", "w")})

	assert.Equal(t, 0, l.SelectedIndex())
}

func TestResultListViewEmpty(t *testing.T) {
	l := NewResultList(nil)
	assert.Contains(t, l.View(), "No results")
}

func TestResultListViewShowsSender(t *testing.T) {
	l := NewResultList(nil)
	l.SetItems([]domain.Message{item(1, "alice", "hello there")})
	view := l.View()
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "hello there")
}
