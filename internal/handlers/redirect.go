package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/link"
	"github.com/serroba/linkboard/internal/messaging"
	"go.uber.org/zap"
)

// RedirectHandler serves the interstitial redirect page for short codes.
// Unlike the API it speaks HTML, so it is registered directly on the chi
// mux rather than through huma.
type RedirectHandler struct {
	service        *link.Service
	publishVisited messaging.Publish[analytics.LinkVisitedEvent]
	logger         *zap.Logger
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(
	service *link.Service,
	publishVisited messaging.Publish[analytics.LinkVisitedEvent],
	logger *zap.Logger,
) *RedirectHandler {
	return &RedirectHandler{
		service:        service,
		publishVisited: publishVisited,
		logger:         logger,
	}
}

// Redirect resolves a short code and serves the interstitial page, or a
// terminal not-found/inactive page. Errors never leak destination data.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	lnk, err := h.service.Resolve(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, link.ErrNotFound):
			servePage(w, http.StatusNotFound, notFoundPage)
		case errors.Is(err, link.ErrInactive):
			servePage(w, http.StatusGone, inactivePage)
		default:
			h.logger.Error("redirect lookup failed",
				zap.String("code", code),
				zap.Error(err),
			)
			servePage(w, http.StatusInternalServerError, errorPage)
		}

		return
	}

	meta := MetaFromRequest(r)
	event := &analytics.LinkVisitedEvent{
		Code:      code,
		VisitedAt: time.Now().UTC(),
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	}

	if err := h.publishVisited(event); err != nil {
		h.logger.Error("failed to publish link visited event",
			zap.String("code", code),
			zap.Error(err),
		)
	}

	// Render into a buffer first so a template failure can still become a
	// clean error page.
	var buf bytes.Buffer

	data := struct {
		Link  *link.Link
		Delay int
	}{Link: lnk, Delay: redirectDelay}

	if err := interstitialPage.Execute(&buf, data); err != nil {
		h.logger.Error("interstitial render failed",
			zap.String("code", code),
			zap.Error(err),
		)
		servePage(w, http.StatusInternalServerError, errorPage)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func servePage(w http.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(page))
}
