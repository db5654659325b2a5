package link

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no link exists for a code or id.
	ErrNotFound = errors.New("link not found")
	// ErrDuplicateCode is returned when a short code is already taken.
	ErrDuplicateCode = errors.New("short code already in use")
	// ErrInactive is returned when a link exists but has been disabled.
	ErrInactive = errors.New("link is inactive")
)

// Link represents a shortened URL with its display metadata and usage stats.
type Link struct {
	ID           string     `json:"id"`
	OriginalURL  string     `json:"originalUrl"`
	ShortCode    string     `json:"shortCode"`
	Title        string     `json:"title"`
	Favicon      string     `json:"favicon"`
	Clicks       int64      `json:"clicks"`
	LastAccessed *time.Time `json:"lastAccessed"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Repository defines the interface for link persistence.
// Implementations must enforce short code uniqueness on Create.
type Repository interface {
	Create(ctx context.Context, lnk *Link) error
	Update(ctx context.Context, lnk *Link) error
	GetByCode(ctx context.Context, code string) (*Link, error)

	// List returns all links, newest first.
	List(ctx context.Context) ([]*Link, error)

	// ToggleActive atomically flips is_active and returns the updated link.
	ToggleActive(ctx context.Context, id string) (*Link, error)

	// RecordVisit atomically increments the click counter and stamps
	// last_accessed for the given code.
	RecordVisit(ctx context.Context, code string, at time.Time) error
}
