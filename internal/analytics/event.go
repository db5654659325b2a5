// Package analytics defines the link lifecycle events and their
// persistence.
package analytics

import "time"

const (
	// TopicLinkCreated carries events for freshly created links.
	TopicLinkCreated = "link.created"
	// TopicLinkVisited carries events for successful redirects.
	TopicLinkVisited = "link.visited"
)

// LinkCreatedEvent is emitted when a link is created through the upsert
// endpoint. Updates of an existing alias do not emit it.
type LinkCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	Title       string    `json:"title"`
	CustomAlias bool      `json:"customAlias"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// LinkVisitedEvent is emitted when a redirect is served for an active link.
type LinkVisitedEvent struct {
	Code      string    `json:"code"`
	VisitedAt time.Time `json:"visitedAt"`
	ClientIP  string    `json:"clientIp"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer"`
}
