package link

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Scraper fetches display metadata for a destination URL. Implementations
// must not fail: on any error they degrade to fallback values.
type Scraper interface {
	Fetch(ctx context.Context, rawURL string) (title, favicon string)
}

// CodeGenerator generates unique short codes.
type CodeGenerator func() string

// visitTimeout bounds the fire-and-forget stats write on redirect.
const visitTimeout = 5 * time.Second

// Service implements the link upsert and redirect workflows.
type Service struct {
	repo         Repository
	scraper      Scraper
	generateCode CodeGenerator
	logger       *zap.Logger
}

// NewService creates a new link service.
func NewService(repo Repository, scraper Scraper, generator CodeGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		scraper:      scraper,
		generateCode: generator,
		logger:       logger,
	}
}

// UpsertInput carries the fields of a create-or-update request. Title and
// Favicon are manual overrides; empty means "scrape it on create".
type UpsertInput struct {
	OriginalURL string
	CustomAlias string
	Title       string
	Favicon     string
}

// UpsertResult is the outcome of an upsert. Created distinguishes a fresh
// link from an update of an existing alias.
type UpsertResult struct {
	Link    *Link
	Created bool
}

// Upsert creates a link, or updates the one identified by the custom alias
// when it already exists. The update path overwrites the destination and
// reactivates the link, but preserves curated title/favicon unless new
// manual values are supplied; no rescrape happens on update. A whitespace
// or empty alias means "generate a code".
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (*UpsertResult, error) {
	alias := strings.TrimSpace(in.CustomAlias)

	if alias != "" {
		existing, err := s.repo.GetByCode(ctx, alias)
		if err == nil {
			existing.OriginalURL = in.OriginalURL
			existing.IsActive = true

			if in.Title != "" {
				existing.Title = in.Title
			}

			if in.Favicon != "" {
				existing.Favicon = in.Favicon
			}

			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, err
			}

			return &UpsertResult{Link: existing, Created: false}, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	title := in.Title
	favicon := in.Favicon

	// One scrape covers whichever fields are missing; manual values win.
	if title == "" || favicon == "" {
		scrapedTitle, scrapedFavicon := s.scraper.Fetch(ctx, in.OriginalURL)

		if title == "" {
			title = scrapedTitle
		}

		if favicon == "" {
			favicon = scrapedFavicon
		}
	}

	code := alias
	if code == "" {
		code = s.generateCode()
	}

	lnk := &Link{
		OriginalURL: in.OriginalURL,
		ShortCode:   code,
		Title:       title,
		Favicon:     favicon,
		IsActive:    true,
	}

	// The existence check above races concurrent upserts of the same new
	// alias; the store's uniqueness constraint is the last line of defense
	// and surfaces here as ErrDuplicateCode.
	if err := s.repo.Create(ctx, lnk); err != nil {
		return nil, err
	}

	return &UpsertResult{Link: lnk, Created: true}, nil
}

// Resolve looks up an active link by its short code and records the visit.
// It returns ErrNotFound when no link exists and ErrInactive when the link
// is disabled. The stats write happens in the background so the caller can
// serve the interstitial page without waiting on it.
func (s *Service) Resolve(ctx context.Context, code string) (*Link, error) {
	lnk, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if !lnk.IsActive {
		return nil, ErrInactive
	}

	go func() {
		visitCtx, cancel := context.WithTimeout(context.Background(), visitTimeout)
		defer cancel()

		if err := s.repo.RecordVisit(visitCtx, code, time.Now().UTC()); err != nil {
			s.logger.Error("failed to record visit",
				zap.String("code", code),
				zap.Error(err),
			)
		}
	}()

	return lnk, nil
}

// List returns all links, newest first.
func (s *Service) List(ctx context.Context) ([]*Link, error) {
	return s.repo.List(ctx)
}

// Toggle flips the active status of a link and returns the updated record.
func (s *Service) Toggle(ctx context.Context, id string) (*Link, error) {
	return s.repo.ToggleActive(ctx, id)
}
