package crawler

import (
	"context"
	"iter"
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
	"github.com/samvad-hq/wire-scout/pkg/publishers"
)

// LinkSource yields the article URLs listed by the source site.
type LinkSource interface {
	Links(ctx context.Context) iter.Seq2[string, error]
}

// PageFetcher retrieves one article page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (domain.RawPage, error)
}

// ArticleStore persists extracted articles. It must be safe for concurrent use.
type ArticleStore interface {
	Save(ctx context.Context, a domain.Article) (string, error)
}

// EventPublisher publishes ingestion events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Recorder receives crawl metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveCycle(discovered int, elapsed time.Duration, err error)
	ObservePage(outcome string)
	WorkerStarted()
	WorkerDone()
}
