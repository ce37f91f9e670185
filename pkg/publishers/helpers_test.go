package publishers

import (
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
	"github.com/samvad-hq/wire-scout/internal/logger"
)

func testEvent() Event {
	return Event{
		RunID:     "run-1",
		ArticleID: "a1",
		Source:    "https://www.prnewswire.com/sitemap-news.xml",
		Article: domain.Article{
			URL:         "https://www.prnewswire.com/news-releases/a1.html",
			Title:       "Acme Ships Widgets",
			PublishedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			Provider:    "Acme Corp",
		},
		IngestedAt: time.Date(2024, 1, 2, 9, 1, 0, 0, time.UTC),
	}
}

var nopLog logger.Logger = logger.NopLogger{}
