package domain

import (
	"strings"
	"time"
)

// Domain contains core models shared by the crawler, storage and API layers.

// Article is one normalized press release. Only the extractor builds it.
type Article struct {
	URL         string    `json:"url" bson:"url"`
	Title       string    `json:"title" bson:"title"`
	PublishedAt time.Time `json:"date" bson:"date"`
	Provider    string    `json:"news_provided_by" bson:"news_provided_by"`
	Content     string    `json:"content" bson:"content"`
}

// StoredArticle is an Article as returned by a store.
type StoredArticle struct {
	ID         string    `json:"id"`
	Article    Article   `json:"article"`
	IngestedAt time.Time `json:"ingested_at"`
}

// RawPage is a fetched article page. It lives for a single extraction.
type RawPage struct {
	URL  string
	Body []byte
}

// Filter is a conjunction of optional predicates over stored articles.
// Text predicates are case-insensitive literal substrings. Start and End are
// inclusive. Limit == 0 means no limit.
type Filter struct {
	Title    string
	Content  string
	Provider string
	Start    *time.Time
	End      *time.Time
	Skip     int64
	Limit    int64
}

// Matches reports whether a satisfies every predicate of f (skip/limit aside).
func (f Filter) Matches(a Article) bool {
	if !containsFold(a.Title, f.Title) {
		return false
	}
	if !containsFold(a.Content, f.Content) {
		return false
	}
	if !containsFold(a.Provider, f.Provider) {
		return false
	}
	if f.Start != nil && a.PublishedAt.Before(*f.Start) {
		return false
	}
	if f.End != nil && a.PublishedAt.After(*f.End) {
		return false
	}
	return true
}

// Page applies skip/limit to an already-filtered, insertion-ordered slice.
func (f Filter) Page(items []StoredArticle) []StoredArticle {
	if f.Skip > 0 {
		if f.Skip >= int64(len(items)) {
			return []StoredArticle{}
		}
		items = items[f.Skip:]
	}
	if f.Limit > 0 && f.Limit < int64(len(items)) {
		items = items[:f.Limit]
	}
	return items
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
