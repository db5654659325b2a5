// Package store provides Postgres and in-memory persistence for links and
// the admin credential, plus rate limit counters.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/serroba/linkboard/internal/auth"
	"github.com/serroba/linkboard/internal/link"
)

// Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS links (
	id            UUID PRIMARY KEY,
	original_url  TEXT NOT NULL,
	short_code    TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	favicon       TEXT NOT NULL DEFAULT '',
	clicks        BIGINT NOT NULL DEFAULT 0,
	last_accessed TIMESTAMPTZ,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS link_events (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	code        TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	client_ip   TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	referrer    TEXT NOT NULL DEFAULT ''
);
`

const linkColumns = `id, original_url, short_code, title, favicon, clicks, last_accessed, is_active, created_at, updated_at`

// pgxPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Postgres implements link.Repository and auth.UserStore on a pgx pool.
// It owns the pool and releases it on Shutdown.
type Postgres struct {
	pool pgxPool
}

// NewPostgresWithPool constructs a store from an existing pool; pgxmock
// pools satisfy pgxPool in tests.
func NewPostgresWithPool(pool pgxPool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the schema if it does not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown releases the underlying pool.
func (p *Postgres) Shutdown() error {
	p.pool.Close()

	return nil
}

func (p *Postgres) Create(ctx context.Context, lnk *link.Link) error {
	now := time.Now().UTC()

	lnk.ID = uuid.NewString()
	lnk.CreatedAt = now
	lnk.UpdatedAt = now

	query := `
		INSERT INTO links (id, original_url, short_code, title, favicon, clicks, last_accessed, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := p.pool.Exec(ctx, query,
		lnk.ID,
		lnk.OriginalURL,
		lnk.ShortCode,
		lnk.Title,
		lnk.Favicon,
		lnk.Clicks,
		lnk.LastAccessed,
		lnk.IsActive,
		lnk.CreatedAt,
		lnk.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return link.ErrDuplicateCode
		}

		return err
	}

	return nil
}

func (p *Postgres) Update(ctx context.Context, lnk *link.Link) error {
	lnk.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE links
		SET original_url = $2, title = $3, favicon = $4, is_active = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := p.pool.Exec(ctx, query,
		lnk.ID,
		lnk.OriginalURL,
		lnk.Title,
		lnk.Favicon,
		lnk.IsActive,
		lnk.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return link.ErrNotFound
	}

	return nil
}

func (p *Postgres) GetByCode(ctx context.Context, code string) (*link.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`

	return p.scanLink(p.pool.QueryRow(ctx, query, code))
}

func (p *Postgres) List(ctx context.Context) ([]*link.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*link.Link

	for rows.Next() {
		lnk, err := p.scanLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, lnk)
	}

	return links, rows.Err()
}

// ToggleActive flips is_active in a single statement so concurrent toggles
// cannot lose updates.
func (p *Postgres) ToggleActive(ctx context.Context, id string) (*link.Link, error) {
	query := `
		UPDATE links
		SET is_active = NOT is_active, updated_at = $2
		WHERE id = $1
		RETURNING ` + linkColumns

	return p.scanLink(p.pool.QueryRow(ctx, query, id, time.Now().UTC()))
}

// RecordVisit bumps the click counter atomically; approximate ordering
// under concurrent redirects is acceptable.
func (p *Postgres) RecordVisit(ctx context.Context, code string, at time.Time) error {
	query := `
		UPDATE links
		SET clicks = clicks + 1, last_accessed = $2, updated_at = $2
		WHERE short_code = $1
	`

	tag, err := p.pool.Exec(ctx, query, code, at)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return link.ErrNotFound
	}

	return nil
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `SELECT id, username, password_hash FROM users WHERE username = $1`

	var user auth.User

	err := p.pool.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}

		return nil, err
	}

	return &user, nil
}

// SeedAdmin creates or refreshes the single admin credential record.
func (p *Postgres) SeedAdmin(ctx context.Context, username, passwordHash string) error {
	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
	`

	_, err := p.pool.Exec(ctx, query, uuid.NewString(), username, passwordHash)

	return err
}

func (p *Postgres) scanLink(row pgx.Row) (*link.Link, error) {
	var lnk link.Link

	err := row.Scan(
		&lnk.ID,
		&lnk.OriginalURL,
		&lnk.ShortCode,
		&lnk.Title,
		&lnk.Favicon,
		&lnk.Clicks,
		&lnk.LastAccessed,
		&lnk.IsActive,
		&lnk.CreatedAt,
		&lnk.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, link.ErrNotFound
		}

		return nil, err
	}

	return &lnk, nil
}
