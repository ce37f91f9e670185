package crawler

import (
	"context"

	"github.com/samvad-hq/wire-scout/internal/domain"
	"github.com/samvad-hq/wire-scout/pkg/httpclient"
)

const defaultMaxPageBytes = 4 << 20 // 4 MiB

// Scraper fetches raw article pages.
type Scraper struct {
	client   httpclient.Client
	headers  map[string]string
	maxBytes int
}

// NewScraper constructs a scraper. A non-positive maxBytes uses the default cap.
func NewScraper(client httpclient.Client, headers map[string]string, maxBytes int) *Scraper {
	if maxBytes <= 0 {
		maxBytes = defaultMaxPageBytes
	}
	return &Scraper{client: client, headers: headers, maxBytes: maxBytes}
}

// DefaultHeaders are sent with every sitemap and page request.
func DefaultHeaders(userAgent string) map[string]string {
	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return headers
}

// Fetch retrieves url. Non-2xx responses fail with *httpclient.FetchError.
// Bodies larger than the cap are truncated.
func (s *Scraper) Fetch(ctx context.Context, url string) (domain.RawPage, error) {
	body, err := httpclient.GetOK(ctx, s.client, url, s.headers)
	if err != nil {
		return domain.RawPage{}, err
	}
	if len(body) > s.maxBytes {
		body = body[:s.maxBytes]
	}
	return domain.RawPage{URL: url, Body: body}, nil
}
