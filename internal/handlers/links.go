package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/link"
	"github.com/serroba/linkboard/internal/messaging"
	"go.uber.org/zap"
)

// LinkHandler handles the link management API.
type LinkHandler struct {
	service        *link.Service
	publishCreated messaging.Publish[analytics.LinkCreatedEvent]
	logger         *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	service *link.Service,
	publishCreated messaging.Publish[analytics.LinkCreatedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:        service,
		publishCreated: publishCreated,
		logger:         logger,
	}
}

// UpsertLink creates a link, or updates the link identified by the custom
// alias when it already exists.
func (h *LinkHandler) UpsertLink(ctx context.Context, req *UpsertLinkRequest) (*UpsertLinkResponse, error) {
	result, err := h.service.Upsert(ctx, link.UpsertInput{
		OriginalURL: req.Body.OriginalURL,
		CustomAlias: req.Body.CustomAlias,
		Title:       req.Body.Title,
		Favicon:     req.Body.Favicon,
	})
	if err != nil {
		if errors.Is(err, link.ErrDuplicateCode) {
			return nil, huma.Error400BadRequest("short code already in use")
		}

		h.logger.Error("link upsert failed",
			zap.String("alias", req.Body.CustomAlias),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("server error")
	}

	resp := &UpsertLinkResponse{}
	resp.Body.Success = true
	resp.Body.Data = result.Link

	if result.Created {
		resp.Status = http.StatusCreated
		resp.Body.Message = "Link created"

		meta := RequestMetaFromContext(ctx)
		event := &analytics.LinkCreatedEvent{
			Code:        result.Link.ShortCode,
			OriginalURL: result.Link.OriginalURL,
			Title:       result.Link.Title,
			CustomAlias: req.Body.CustomAlias != "",
			CreatedAt:   result.Link.CreatedAt,
			ClientIP:    meta.ClientIP,
			UserAgent:   meta.UserAgent,
		}

		if err := h.publishCreated(event); err != nil {
			h.logger.Error("failed to publish link created event",
				zap.String("code", event.Code),
				zap.Error(err),
			)
		}
	} else {
		resp.Status = http.StatusOK
		resp.Body.Message = "Link updated"
	}

	return resp, nil
}

// ListLinks returns all links, newest first.
func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	links, err := h.service.List(ctx)
	if err != nil {
		h.logger.Error("link listing failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("server error")
	}

	if links == nil {
		links = []*link.Link{}
	}

	resp := &ListLinksResponse{}
	resp.Body.Success = true
	resp.Body.Data = links

	return resp, nil
}

// ToggleLink flips the active status of a link.
func (h *LinkHandler) ToggleLink(ctx context.Context, req *ToggleLinkRequest) (*ToggleLinkResponse, error) {
	lnk, err := h.service.Toggle(ctx, req.ID)
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		h.logger.Error("link toggle failed",
			zap.String("id", req.ID),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("server error")
	}

	resp := &ToggleLinkResponse{}
	resp.Body.Success = true
	resp.Body.Data = lnk

	return resp, nil
}
