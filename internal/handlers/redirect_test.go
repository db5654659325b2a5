package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/handlers"
	"github.com/serroba/linkboard/internal/link"
	"github.com/serroba/linkboard/internal/messaging"
	"github.com/serroba/linkboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedirectRouter(
	repo link.Repository,
	publish messaging.Publish[analytics.LinkVisitedEvent],
) *chi.Mux {
	router := chi.NewMux()
	redirect := handlers.NewRedirectHandler(newTestService(repo), publish, zap.NewNop())
	handlers.RegisterWebRoutes(router, redirect)

	return router
}

func seedLink(t *testing.T, memStore *store.Memory, active bool) *link.Link {
	t.Helper()

	lnk := &link.Link{
		OriginalURL: "https://example.com/landing",
		ShortCode:   "abc123",
		Title:       "Example",
		Favicon:     "https://example.com/icon.png",
		IsActive:    true,
	}
	require.NoError(t, memStore.Create(context.Background(), lnk))

	if !active {
		_, err := memStore.ToggleActive(context.Background(), lnk.ID)
		require.NoError(t, err)
	}

	return lnk
}

func TestRedirect(t *testing.T) {
	t.Run("serves the interstitial page for an active link", func(t *testing.T) {
		memStore := store.NewMemory()
		seedLink(t, memStore, true)

		var events []*analytics.LinkVisitedEvent

		router := newRedirectRouter(memStore, capturePublish(&events))

		req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
		req.Header.Set("Referer", "https://referrer.example.com")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

		body := w.Body.String()
		assert.Contains(t, body, "https://example.com/landing")
		assert.Contains(t, body, "Example")
		assert.Contains(t, body, "https://example.com/icon.png")

		require.Len(t, events, 1)
		assert.Equal(t, "abc123", events[0].Code)
		assert.Equal(t, "https://referrer.example.com", events[0].Referrer)
	})

	t.Run("records the visit asynchronously", func(t *testing.T) {
		memStore := store.NewMemory()
		seedLink(t, memStore, true)

		router := newRedirectRouter(memStore, noopPublish[analytics.LinkVisitedEvent]())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc123", nil))

		require.Equal(t, http.StatusOK, w.Code)

		require.Eventually(t, func() bool {
			stored, err := memStore.GetByCode(context.Background(), "abc123")

			return err == nil && stored.Clicks == 1 && stored.LastAccessed != nil
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("returns 404 HTML for an unknown code", func(t *testing.T) {
		router := newRedirectRouter(store.NewMemory(), noopPublish[analytics.LinkVisitedEvent]())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Link not found")
	})

	t.Run("returns 410 HTML for a disabled link without counting", func(t *testing.T) {
		memStore := store.NewMemory()
		seedLink(t, memStore, false)

		var events []*analytics.LinkVisitedEvent

		router := newRedirectRouter(memStore, capturePublish(&events))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc123", nil))

		assert.Equal(t, http.StatusGone, w.Code)
		assert.Contains(t, w.Body.String(), "disabled")
		assert.Empty(t, events, "disabled links must not emit visit events")

		stored, err := memStore.GetByCode(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Zero(t, stored.Clicks)
	})

	t.Run("still serves the page when the event publish fails", func(t *testing.T) {
		memStore := store.NewMemory()
		seedLink(t, memStore, true)

		router := newRedirectRouter(memStore, errorPublish[analytics.LinkVisitedEvent](assert.AnError))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/abc123", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
