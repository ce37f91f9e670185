// Package sitemap walks a two-level sitemap index and yields article URLs.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/pkg/httpclient"
)

// ChildPolicy decides what happens when one child sitemap cannot be read.
type ChildPolicy string

const (
	// IsolateChildFailures logs the failing child and continues with the next one.
	IsolateChildFailures ChildPolicy = "isolate"
	// AbortOnChildFailure stops the walk and surfaces the error.
	AbortOnChildFailure ChildPolicy = "abort"
)

// ErrRootSitemap marks a failure reading the root sitemap index.
var ErrRootSitemap = errors.New("root sitemap index unavailable")

// Discoverer produces the article URLs listed under a sitemap index.
type Discoverer struct {
	client  httpclient.Client
	rootURL string
	headers map[string]string
	policy  ChildPolicy
	log     logger.Logger
}

// Option customises a Discoverer.
type Option func(*Discoverer)

// WithHeaders sets request headers sent with every sitemap fetch.
func WithHeaders(headers map[string]string) Option {
	return func(d *Discoverer) { d.headers = headers }
}

// WithChildPolicy overrides the default IsolateChildFailures policy.
func WithChildPolicy(p ChildPolicy) Option {
	return func(d *Discoverer) {
		if p == AbortOnChildFailure {
			d.policy = p
		}
	}
}

// WithLogger sets the logger used for isolated child failures.
func WithLogger(log logger.Logger) Option {
	return func(d *Discoverer) { d.log = logger.Ensure(log) }
}

// NewDiscoverer builds a Discoverer for the sitemap index at rootURL.
func NewDiscoverer(client httpclient.Client, rootURL string, opts ...Option) *Discoverer {
	d := &Discoverer{
		client:  client,
		rootURL: rootURL,
		policy:  IsolateChildFailures,
		log:     logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Links lazily walks root index → child sitemaps → article URLs. Each call
// starts a fresh walk. A root failure yields a single error and nothing else.
// Stopping the iteration stops further fetching.
func (d *Discoverer) Links(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		children, err := d.ChildSitemaps(ctx, d.rootURL)
		if err != nil {
			yield("", fmt.Errorf("%w: %w", ErrRootSitemap, err))
			return
		}

		for _, child := range children {
			links, err := d.ArticleLinks(ctx, child)
			if err != nil {
				if d.policy == AbortOnChildFailure {
					yield("", fmt.Errorf("child sitemap %s: %w", child, err))
					return
				}
				d.log.WarnObj("child sitemap skipped", "sitemap_error", map[string]any{
					"sitemap_url": child,
					"error":       err.Error(),
				})
				continue
			}

			for _, link := range links {
				if !yield(link, nil) {
					return
				}
			}
		}
	}
}

// ChildSitemaps fetches a sitemap index and returns its child sitemap URLs.
func (d *Discoverer) ChildSitemaps(ctx context.Context, indexURL string) ([]string, error) {
	raw, err := httpclient.GetOK(ctx, d.client, indexURL, d.headers)
	if err != nil {
		return nil, err
	}
	return ParseIndex(raw)
}

// ArticleLinks fetches one child sitemap and returns its article URLs.
func (d *Discoverer) ArticleLinks(ctx context.Context, sitemapURL string) ([]string, error) {
	raw, err := httpclient.GetOK(ctx, d.client, sitemapURL, d.headers)
	if err != nil {
		return nil, err
	}
	return ParseURLSet(raw)
}

// Collect drains a link sequence eagerly, stopping at the first error.
func Collect(seq iter.Seq2[string, error]) ([]string, error) {
	var out []string
	for link, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, link)
	}
	return out, nil
}
