// Package metadata scrapes page titles and favicons for link display.
package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Sites tend to reject obvious bot agents, so the fetcher identifies as a
// desktop browser.
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultTimeout bounds a scrape; the fetch blocks the enclosing request.
const DefaultTimeout = 8 * time.Second

// Fetcher retrieves page metadata with a chain of fallbacks. Fetch never
// returns an error: anything that goes wrong degrades to hostname title and
// a favicon-by-domain service URL.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewFetcher creates a fetcher with the given scrape timeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		logger:    logger,
	}
}

// Fetch retrieves rawURL and extracts its title and favicon.
//
// Fallback chain: title falls back to the URL's hostname; the favicon is
// taken from rel="icon", then rel="shortcut icon", relative hrefs resolved
// against the page origin, and finally synthesized from a favicon-by-domain
// service. Fetch or parse failures collapse to the same fallback shape, so
// callers cannot tell a partial from a total scrape failure except via logs.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (title, favicon string) {
	title = hostnameOf(rawURL)
	favicon = serviceFavicon(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.logger.Warn("metadata scrape skipped", zap.String("url", rawURL), zap.Error(err))

		return title, favicon
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("metadata fetch failed", zap.String("url", rawURL), zap.Error(err))

		return title, favicon
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		f.logger.Warn("metadata fetch rejected",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)

		return title, favicon
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		f.logger.Warn("metadata parse failed", zap.String("url", rawURL), zap.Error(err))

		return title, favicon
	}

	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		title = t
	}

	icon, ok := doc.Find(`link[rel="icon"]`).Attr("href")
	if !ok || icon == "" {
		icon, _ = doc.Find(`link[rel="shortcut icon"]`).Attr("href")
	}

	if icon != "" {
		favicon = resolveFavicon(rawURL, icon)
	}

	return title, favicon
}

// resolveFavicon makes a scraped favicon href absolute by joining it with
// the page origin, with exactly one slash between them.
func resolveFavicon(pageURL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}

	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return href
	}

	origin := u.Scheme + "://" + u.Host

	if strings.HasPrefix(href, "/") {
		return origin + href
	}

	return origin + "/" + href
}

// serviceFavicon synthesizes a favicon URL from a third-party
// favicon-by-domain service.
func serviceFavicon(rawURL string) string {
	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=128", url.QueryEscape(rawURL))
}

// hostnameOf extracts the hostname for title fallbacks. Unparseable input
// is returned as-is so the result is always non-empty for non-empty input.
func hostnameOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}

	return u.Hostname()
}
