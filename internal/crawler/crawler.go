package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/wire-scout/internal/logger"
	"github.com/samvad-hq/wire-scout/pkg/article"
	"github.com/samvad-hq/wire-scout/pkg/publishers"
	"github.com/samvad-hq/wire-scout/pkg/sitemap"
)

// Failure kinds reported per page.
const (
	FailureFetch   = "fetch"
	FailureExtract = "extract"
	FailurePersist = "persist"

	outcomePersisted   = "persisted"
	defaultConcurrency = 8
)

// Options tunes a Service. Zero values are usable.
type Options struct {
	Concurrency int
	// Source labels ingestion events, normally the root sitemap URL.
	Source    string
	Publisher EventPublisher
	Metrics   Recorder
	Logger    logger.Logger
}

// Service runs crawl cycles: discover links, then fetch, extract and persist
// every page on a fixed worker pool.
type Service struct {
	links       LinkSource
	fetcher     PageFetcher
	store       ArticleStore
	publisher   EventPublisher
	metrics     Recorder
	log         logger.Logger
	source      string
	concurrency int
}

// NewService wires a crawler from its collaborators.
func NewService(links LinkSource, fetcher PageFetcher, store ArticleStore, opts Options) *Service {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	rec := opts.Metrics
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{
		links:       links,
		fetcher:     fetcher,
		store:       store,
		publisher:   opts.Publisher,
		metrics:     rec,
		log:         logger.Ensure(opts.Logger),
		source:      opts.Source,
		concurrency: concurrency,
	}
}

// PageFailure is one isolated per-URL failure.
type PageFailure struct {
	URL  string
	Kind string
	Err  error
}

// CycleResult summarizes one crawl cycle.
type CycleResult struct {
	RunID      string
	Discovered int
	Attempted  int
	Persisted  int
	IDs        []string
	Failures   []PageFailure
	Elapsed    time.Duration
}

// FailuresByKind counts failures per kind.
func (r CycleResult) FailuresByKind() map[string]int {
	out := make(map[string]int, 3)
	for _, f := range r.Failures {
		out[f.Kind]++
	}
	return out
}

type pageResult struct {
	url  string
	id   string
	kind string
	err  error
}

// RunCycle performs one full crawl. Only a discovery failure fails the cycle;
// in that case no page is fetched.
func (s *Service) RunCycle(ctx context.Context) (CycleResult, error) {
	if s == nil || s.links == nil || s.fetcher == nil || s.store == nil {
		return CycleResult{}, fmt.Errorf("crawler service is not initialized")
	}

	start := time.Now()
	res := CycleResult{RunID: uuid.NewString()}
	s.log.InfoObj("crawl cycle started", "cycle", map[string]any{
		"run_id":      res.RunID,
		"source":      s.source,
		"concurrency": s.concurrency,
	})

	urls, err := sitemap.Collect(s.links.Links(ctx))
	if err != nil {
		res.Elapsed = time.Since(start)
		s.metrics.ObserveCycle(0, res.Elapsed, err)
		s.log.ErrorObj("crawl cycle aborted", "cycle_error", map[string]any{
			"run_id": res.RunID,
			"error":  err.Error(),
		})
		return res, fmt.Errorf("discover links: %w", err)
	}
	res.Discovered = len(urls)

	for r := range s.process(ctx, res.RunID, urls) {
		res.Attempted++
		if r.err != nil {
			res.Failures = append(res.Failures, PageFailure{URL: r.url, Kind: r.kind, Err: r.err})
			s.metrics.ObservePage(r.kind)
			s.logFailure(res.RunID, r)
			continue
		}
		res.Persisted++
		res.IDs = append(res.IDs, r.id)
		s.metrics.ObservePage(outcomePersisted)
	}

	res.Elapsed = time.Since(start)
	s.metrics.ObserveCycle(res.Discovered, res.Elapsed, nil)
	s.log.InfoObj("crawl cycle completed", "cycle_result", map[string]any{
		"run_id":     res.RunID,
		"discovered": res.Discovered,
		"attempted":  res.Attempted,
		"persisted":  res.Persisted,
		"failures":   res.FailuresByKind(),
		"elapsed_ms": res.Elapsed.Milliseconds(),
	})
	return res, nil
}

// process feeds urls to the worker pool in discovery order and returns the
// unordered result stream, closed once every url has been handled.
func (s *Service) process(ctx context.Context, runID string, urls []string) <-chan pageResult {
	jobs := make(chan string)
	results := make(chan pageResult)

	workers := min(s.concurrency, len(urls))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range jobs {
				s.metrics.WorkerStarted()
				results <- s.handle(ctx, runID, url)
				s.metrics.WorkerDone()
			}
		}()
	}

	go func() {
		for _, url := range urls {
			jobs <- url
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// handle runs fetch, extract, persist and publish for one url.
func (s *Service) handle(ctx context.Context, runID, url string) pageResult {
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return pageResult{url: url, kind: FailureFetch, err: err}
	}

	parsed, err := article.Parse(url, page.Body)
	if err != nil {
		return pageResult{url: url, kind: FailureExtract, err: err}
	}
	s.logParseDetails(runID, parsed, url)

	art, err := parsed.Article()
	if err != nil {
		return pageResult{url: url, kind: FailureExtract, err: err}
	}

	id, err := s.store.Save(ctx, art)
	if err != nil {
		return pageResult{url: url, kind: FailurePersist, err: err}
	}

	s.publish(ctx, runID, id, art.URL, publishers.NewEvent(runID, id, s.source, art))
	return pageResult{url: url, id: id}
}

// publish notifies downstream sinks. Failures never affect the page outcome.
func (s *Service) publish(ctx context.Context, runID, id, url string, evt publishers.Event) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.WarnObj("ingestion event publish failed", "publish_error", map[string]any{
			"run_id":     runID,
			"article_id": id,
			"url":        url,
			"error":      err.Error(),
		})
	}
}

func (s *Service) logParseDetails(runID string, page article.Page, url string) {
	fields := map[string]any{
		"run_id":    runID,
		"url":       url,
		"publisher": page.Publisher(),
	}
	if warnings := page.Warnings(); len(warnings) > 0 {
		fields["warnings"] = warnings
	}
	s.log.DebugObj("article page parsed", "page_parse", fields)
}

func (s *Service) logFailure(runID string, r pageResult) {
	fields := map[string]any{
		"run_id": runID,
		"url":    r.url,
		"kind":   r.kind,
		"error":  r.err.Error(),
	}
	var extractErr *article.ExtractionError
	if errors.As(r.err, &extractErr) {
		fields["missing_fields"] = extractErr.Missing
	}
	s.log.WarnObj("article page failed", "page_error", fields)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCycle(int, time.Duration, error) {}
func (nopRecorder) ObservePage(string)                      {}
func (nopRecorder) WorkerStarted()                          {}
func (nopRecorder) WorkerDone()                             {}
