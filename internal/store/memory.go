package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/linkboard/internal/auth"
	"github.com/serroba/linkboard/internal/link"
)

// Memory is an in-memory implementation of link.Repository and
// auth.UserStore, used in tests and local development.
type Memory struct {
	mu    sync.RWMutex
	links map[string]*link.Link // id -> link
	codes map[string]string     // short code -> id
	users map[string]*auth.User // username -> user
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		links: make(map[string]*link.Link),
		codes: make(map[string]string),
		users: make(map[string]*auth.User),
	}
}

func (m *Memory) Create(_ context.Context, lnk *link.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.codes[lnk.ShortCode]; taken {
		return link.ErrDuplicateCode
	}

	now := time.Now().UTC()
	lnk.ID = uuid.NewString()
	lnk.CreatedAt = now
	lnk.UpdatedAt = now

	stored := *lnk
	m.links[lnk.ID] = &stored
	m.codes[lnk.ShortCode] = lnk.ID

	return nil
}

func (m *Memory) Update(_ context.Context, lnk *link.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.links[lnk.ID]
	if !ok {
		return link.ErrNotFound
	}

	lnk.UpdatedAt = time.Now().UTC()

	stored := *lnk
	stored.Clicks = existing.Clicks
	stored.LastAccessed = existing.LastAccessed

	delete(m.codes, existing.ShortCode)
	m.links[lnk.ID] = &stored
	m.codes[stored.ShortCode] = lnk.ID

	return nil
}

func (m *Memory) GetByCode(_ context.Context, code string) (*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.codes[code]
	if !ok {
		return nil, link.ErrNotFound
	}

	copied := *m.links[id]

	return &copied, nil
}

func (m *Memory) List(_ context.Context) ([]*link.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]*link.Link, 0, len(m.links))

	for _, lnk := range m.links {
		copied := *lnk
		links = append(links, &copied)
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})

	return links, nil
}

func (m *Memory) ToggleActive(_ context.Context, id string) (*link.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lnk, ok := m.links[id]
	if !ok {
		return nil, link.ErrNotFound
	}

	lnk.IsActive = !lnk.IsActive
	lnk.UpdatedAt = time.Now().UTC()

	copied := *lnk

	return &copied, nil
}

func (m *Memory) RecordVisit(_ context.Context, code string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.codes[code]
	if !ok {
		return link.ErrNotFound
	}

	lnk := m.links[id]
	lnk.Clicks++
	lnk.LastAccessed = &at
	lnk.UpdatedAt = at

	return nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	copied := *user

	return &copied, nil
}

// SeedAdmin creates or refreshes the admin credential record.
func (m *Memory) SeedAdmin(_ context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[username] = &auth.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}

	return nil
}
