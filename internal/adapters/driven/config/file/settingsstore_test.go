package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukejohnsonrp/convofind/internal/core/domain"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPageSize, settings.PageSize)
	assert.Equal(t, "default", settings.Theme)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	want := &domain.Settings{
		HistoryPath: "/tmp/history.db",
		PageSize:    7,
		RemoteURL:   "https://api.example.com",
		RemoteToken: "secret",
		Theme:       "default",
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadNormalisesPartialFile(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(&domain.Settings{HistoryPath: "/tmp/h.db"}))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/h.db", got.HistoryPath)
	assert.Equal(t, domain.DefaultPageSize, got.PageSize)
}

func TestWatchFiresOnSave(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *domain.Settings, 4)
	require.NoError(t, store.Watch(ctx, func(s *domain.Settings) {
		changes <- s
	}))

	require.NoError(t, store.Save(&domain.Settings{PageSize: 42}))

	select {
	case got := <-changes:
		assert.Equal(t, 42, got.PageSize)
	case <-time.After(5 * time.Second):
		t.Fatal("watch never fired")
	}
}
