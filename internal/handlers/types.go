package handlers

import "github.com/serroba/linkboard/internal/link"

// LinkEnvelope wraps a single link in the API response shape.
type LinkEnvelope struct {
	Success bool       `json:"success"`
	Data    *link.Link `json:"data"`
	Message string     `json:"message,omitempty"`
}

// UpsertLinkRequest is the request body for creating or updating a link.
type UpsertLinkRequest struct {
	Body struct {
		OriginalURL string `doc:"The destination URL"                         example:"https://example.com/very/long/path" format:"uri" json:"originalUrl" minLength:"1"`
		CustomAlias string `doc:"User-chosen short code; empty to generate"   example:"ex1"                                json:"customAlias,omitempty" maxLength:"64"`
		Title       string `doc:"Manual display title; empty to scrape"       json:"title,omitempty"`
		Favicon     string `doc:"Manual favicon URL; empty to scrape"         json:"favicon,omitempty"`
	}
}

// UpsertLinkResponse is the response for an upsert; Status is 201 for a
// created link and 200 for an update of an existing alias.
type UpsertLinkResponse struct {
	Status int
	Body   LinkEnvelope
}

// ListLinksResponse is the response for the dashboard listing.
type ListLinksResponse struct {
	Body struct {
		Success bool         `json:"success"`
		Data    []*link.Link `json:"data"`
	}
}

// ToggleLinkRequest identifies the link whose active status to flip.
type ToggleLinkRequest struct {
	ID string `doc:"The link id" path:"id"`
}

// ToggleLinkResponse carries the updated link.
type ToggleLinkResponse struct {
	Body LinkEnvelope
}

// LoginRequest is the request body for the admin login.
type LoginRequest struct {
	Body struct {
		Username string `doc:"Admin username" json:"username" minLength:"1"`
		Password string `doc:"Admin password" json:"password" minLength:"1"`
	}
}

// LoginResponse carries the bearer token for protected endpoints.
type LoginResponse struct {
	Body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
}
