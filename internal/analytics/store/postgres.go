package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/serroba/linkboard/internal/analytics"
)

const (
	kindCreated = "created"
	kindVisited = "visited"
)

// execer is the subset of pgxpool.Pool the analytics store uses; pgxmock
// satisfies it in tests.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres persists analytics events into the link_events table.
type Postgres struct {
	pool execer
}

// NewPostgres creates a Postgres-backed analytics store on an existing
// pool.
func NewPostgres(pool execer) *Postgres {
	return &Postgres{pool: pool}
}

const insertEvent = `
	INSERT INTO link_events (id, kind, code, occurred_at, client_ip, user_agent, referrer)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func (p *Postgres) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	_, err := p.pool.Exec(ctx, insertEvent,
		uuid.NewString(),
		kindCreated,
		event.Code,
		event.CreatedAt,
		event.ClientIP,
		event.UserAgent,
		"",
	)

	return err
}

func (p *Postgres) SaveLinkVisited(ctx context.Context, event *analytics.LinkVisitedEvent) error {
	_, err := p.pool.Exec(ctx, insertEvent,
		uuid.NewString(),
		kindVisited,
		event.Code,
		event.VisitedAt,
		event.ClientIP,
		event.UserAgent,
		event.Referrer,
	)

	return err
}
