package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/linkboard/internal/auth"
	"github.com/serroba/linkboard/internal/link"
	"github.com/serroba/linkboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoredLink(t *testing.T, memStore *store.Memory, code string) *link.Link {
	t.Helper()

	lnk := &link.Link{
		OriginalURL: "https://example.com",
		ShortCode:   code,
		Title:       "Example",
		IsActive:    true,
	}
	require.NoError(t, memStore.Create(context.Background(), lnk))

	return lnk
}

func TestMemoryCreate(t *testing.T) {
	t.Run("assigns id and timestamps", func(t *testing.T) {
		memStore := store.NewMemory()

		lnk := newStoredLink(t, memStore, "abc123")

		assert.NotEmpty(t, lnk.ID)
		assert.False(t, lnk.CreatedAt.IsZero())
		assert.Equal(t, lnk.CreatedAt, lnk.UpdatedAt)
	})

	t.Run("rejects duplicate short codes", func(t *testing.T) {
		memStore := store.NewMemory()
		newStoredLink(t, memStore, "abc123")

		err := memStore.Create(context.Background(), &link.Link{
			OriginalURL: "https://other.example.com",
			ShortCode:   "abc123",
		})

		assert.ErrorIs(t, err, link.ErrDuplicateCode)
	})
}

func TestMemoryUpdate(t *testing.T) {
	t.Run("preserves click stats across updates", func(t *testing.T) {
		memStore := store.NewMemory()
		lnk := newStoredLink(t, memStore, "abc123")

		at := time.Now().UTC()
		require.NoError(t, memStore.RecordVisit(context.Background(), "abc123", at))

		lnk.OriginalURL = "https://changed.example.com"
		require.NoError(t, memStore.Update(context.Background(), lnk))

		stored, err := memStore.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "https://changed.example.com", stored.OriginalURL)
		assert.Equal(t, int64(1), stored.Clicks)
		require.NotNil(t, stored.LastAccessed)
	})

	t.Run("reindexes a changed short code", func(t *testing.T) {
		memStore := store.NewMemory()
		lnk := newStoredLink(t, memStore, "abc123")

		lnk.ShortCode = "def456"
		require.NoError(t, memStore.Update(context.Background(), lnk))

		_, err := memStore.GetByCode(context.Background(), "abc123")
		assert.ErrorIs(t, err, link.ErrNotFound)

		stored, err := memStore.GetByCode(context.Background(), "def456")
		require.NoError(t, err)
		assert.Equal(t, lnk.ID, stored.ID)
	})

	t.Run("returns ErrNotFound for unknown ids", func(t *testing.T) {
		memStore := store.NewMemory()

		err := memStore.Update(context.Background(), &link.Link{ID: "missing"})

		assert.ErrorIs(t, err, link.ErrNotFound)
	})
}

func TestMemoryList(t *testing.T) {
	t.Run("returns links newest first", func(t *testing.T) {
		memStore := store.NewMemory()

		first := newStoredLink(t, memStore, "first")
		time.Sleep(time.Millisecond)
		second := newStoredLink(t, memStore, "second")

		links, err := memStore.List(context.Background())

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, second.ID, links[0].ID)
		assert.Equal(t, first.ID, links[1].ID)
	})
}

func TestMemoryGetByCode(t *testing.T) {
	t.Run("returns a copy that cannot mutate the store", func(t *testing.T) {
		memStore := store.NewMemory()
		newStoredLink(t, memStore, "abc123")

		got, err := memStore.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)

		got.Title = "mutated"

		again, err := memStore.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "Example", again.Title)
	})
}

func TestMemoryRecordVisit(t *testing.T) {
	t.Run("accumulates clicks", func(t *testing.T) {
		memStore := store.NewMemory()
		newStoredLink(t, memStore, "abc123")

		at := time.Now().UTC()

		for range 3 {
			require.NoError(t, memStore.RecordVisit(context.Background(), "abc123", at))
		}

		stored, err := memStore.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(3), stored.Clicks)
	})

	t.Run("returns ErrNotFound for unknown codes", func(t *testing.T) {
		memStore := store.NewMemory()

		err := memStore.RecordVisit(context.Background(), "missing", time.Now().UTC())

		assert.ErrorIs(t, err, link.ErrNotFound)
	})
}

func TestMemoryUsers(t *testing.T) {
	t.Run("seed then lookup round-trips", func(t *testing.T) {
		memStore := store.NewMemory()

		require.NoError(t, memStore.SeedAdmin(context.Background(), "admin", "hash"))

		user, err := memStore.GetUserByUsername(context.Background(), "admin")

		require.NoError(t, err)
		assert.Equal(t, "admin", user.Username)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("returns ErrUserNotFound for unknown usernames", func(t *testing.T) {
		memStore := store.NewMemory()

		_, err := memStore.GetUserByUsername(context.Background(), "ghost")

		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
