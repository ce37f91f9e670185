package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/wire-scout/internal/config"
	"github.com/samvad-hq/wire-scout/internal/crawler"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/internal/metrics"
	"github.com/samvad-hq/wire-scout/internal/storage"
	"github.com/samvad-hq/wire-scout/pkg/httpclient"
	"github.com/samvad-hq/wire-scout/pkg/publishers"
	"github.com/samvad-hq/wire-scout/pkg/sitemap"
)

// Harvester is the crawl runtime. It owns the crawl loop and the publisher
// clients; the store is shared with the API and closed by the caller.
type Harvester struct {
	cfg           *config.Config
	fanout        *publishers.Fanout
	crawlService  *crawler.Service
	crawlInterval time.Duration
	log           logger.Logger
}

// NewHarvester wires discovery, fetching, extraction, the store and the
// optional publishers into a crawl service. m may be nil.
func NewHarvester(ctx context.Context, cfg *config.Config, store storage.Store, m *metrics.Metrics, log logger.Logger) (*Harvester, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout, cfg.UserAgent)
	headers := crawler.DefaultHeaders(cfg.UserAgent)
	discoverer := sitemap.NewDiscoverer(client, cfg.SitemapURL,
		sitemap.WithHeaders(headers),
		sitemap.WithChildPolicy(sitemap.ChildPolicy(cfg.ChildSitemapPolicy)),
		sitemap.WithLogger(log),
	)

	opts := crawler.Options{
		Concurrency: cfg.CrawlConcurrency,
		Source:      cfg.SitemapURL,
		Logger:      log,
	}
	if fanout.Size() > 0 {
		opts.Publisher = fanout
	}
	if m != nil {
		opts.Metrics = m
	}
	svc := crawler.NewService(discoverer, crawler.NewScraper(client, headers, cfg.MaxPageBytes), store, opts)

	return &Harvester{
		cfg:           cfg,
		fanout:        fanout,
		crawlService:  svc,
		crawlInterval: cfg.CrawlInterval,
		log:           log,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("no publishers file configured; ingestion events disabled", "publishers_file", "")
		return publishers.NewFanout(nil), nil
	}

	enabled, err := publishers.LoadConfigs(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{"id": pubCfg.ID, "type": pubCfg.Type})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run crawls immediately and then on every interval until ctx is cancelled.
func (h *Harvester) Run(ctx context.Context) error {
	if h == nil || h.crawlService == nil {
		return fmt.Errorf("harvester is not initialized")
	}

	h.log.InfoObj("harvester loop starting", "harvester_state", map[string]any{
		"sitemap_url":      h.cfg.SitemapURL,
		"publishers_count": h.fanout.Size(),
		"crawl_interval":   h.crawlInterval.String(),
	})

	if _, err := h.RunOnce(ctx); err != nil {
		h.log.ErrorObj("initial crawl failed", "error", err.Error())
	}

	ticker := time.NewTicker(h.crawlInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.InfoObj("harvester loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := h.RunOnce(ctx); err != nil {
				h.log.ErrorObj("scheduled crawl failed", "error", err.Error())
			}
		}
	}
}

// RunOnce performs a single crawl cycle.
func (h *Harvester) RunOnce(ctx context.Context) (crawler.CycleResult, error) {
	if h == nil || h.crawlService == nil {
		return crawler.CycleResult{}, fmt.Errorf("harvester is not initialized")
	}
	return h.crawlService.RunCycle(ctx)
}

// Close releases publisher clients.
func (h *Harvester) Close() {
	if h == nil {
		return
	}
	if err := h.fanout.Close(); err != nil {
		h.log.ErrorObj("publisher close failed", "error", err.Error())
	}
}
