package publishers

import (
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
)

// Event is the ingestion notification sent downstream after an article is
// persisted.
type Event struct {
	RunID      string         `json:"run_id"`
	ArticleID  string         `json:"article_id"`
	Source     string         `json:"source"`
	Article    domain.Article `json:"article"`
	IngestedAt time.Time      `json:"ingested_at"`
}

// NewEvent constructs an Event for a stored article.
func NewEvent(runID, articleID, source string, article domain.Article) Event {
	return Event{
		RunID:      runID,
		ArticleID:  articleID,
		Source:     source,
		Article:    article,
		IngestedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue messages.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"article_id":       e.ArticleID,
		"news_provided_by": e.Article.Provider,
		"source":           e.Source,
	}
}
