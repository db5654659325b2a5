package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/linkboard/internal/auth"
	"github.com/serroba/linkboard/internal/ratelimit"
)

// RegisterRoutes registers the JSON API. The upsert endpoint is deliberately
// unauthenticated so external scripts can create links without credentials;
// listing and toggling are login-gated via operation metadata.
func RegisterRoutes(api huma.API, links *LinkHandler, authHandler *AuthHandler) {
	UseAPIErrors()

	huma.Register(api, huma.Operation{
		OperationID: "upsert-link",
		Method:      http.MethodPost,
		Path:        "/api/links",
		Summary:     "Create or update a link",
		Description: "Creates a short link, or updates the link identified by the custom alias when it already exists.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},
					{Window: time.Hour, Max: 300},
				},
			},
		},
	}, links.UpsertLink)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/api/links",
		Summary:     "List links",
		Description: "Returns all links for the dashboard, newest first.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, links.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-link",
		Method:      http.MethodPut,
		Path:        "/api/links/{id}/toggle",
		Summary:     "Toggle link status",
		Description: "Flips the active status of a link; inactive links are not redirectable.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			auth.MetadataKey: true,
		},
	}, links.ToggleLink)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Admin login",
		Description: "Validates credentials and returns a bearer token for the protected endpoints.",
		Tags:        []string{"Auth"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
				},
			},
		},
	}, authHandler.Login)
}

// RegisterWebRoutes registers the HTML-speaking routes directly on the chi
// mux. The catch-all short code route must not shadow /api or /health,
// which chi guarantees by matching static segments first.
func RegisterWebRoutes(mux *chi.Mux, redirect *RedirectHandler) {
	mux.Get("/{code}", redirect.Redirect)
}
