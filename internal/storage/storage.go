package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
)

// Package storage is the persistence gateway for extracted articles.

// Store persists articles and answers filtered queries. Implementations must
// be safe for concurrent use by crawl workers.
type Store interface {
	// Save persists a and returns the store-assigned id.
	Save(ctx context.Context, a domain.Article) (string, error)
	// Query returns the articles matching f in insertion order.
	Query(ctx context.Context, f domain.Filter) ([]domain.StoredArticle, error)
	Close(ctx context.Context) error
}

// Indexer is implemented by stores that can prepare secondary indexes.
type Indexer interface {
	EnsureIndexes(ctx context.Context) error
}

const (
	TypeMongo  = "mongo"
	TypeBBolt  = "bbolt"
	TypeMemory = "memory"

	// ModeInsert stores every save as a new record.
	ModeInsert = "insert"
	// ModeUpsert replaces the record that has the same URL.
	ModeUpsert = "upsert"
)

// Options selects and configures a concrete store.
type Options struct {
	Type          string
	Mode          string
	MongoURI      string
	MongoDatabase string
	BBoltPath     string
}

// NewStore creates the configured storage backend.
func NewStore(ctx context.Context, opts Options) (Store, error) {
	typ := strings.TrimSpace(strings.ToLower(opts.Type))
	mode, err := normalizeMode(opts.Mode)
	if err != nil {
		return nil, err
	}

	switch typ {
	case "", TypeMongo:
		if strings.TrimSpace(opts.MongoURI) == "" {
			return nil, fmt.Errorf("mongo storage requires a uri")
		}
		return openMongo(ctx, opts.MongoURI, opts.MongoDatabase, mode)
	case TypeBBolt:
		if strings.TrimSpace(opts.BBoltPath) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(opts.BBoltPath, mode)
	case TypeMemory:
		return NewMemoryStore(mode), nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeMode(mode string) (string, error) {
	mode = strings.TrimSpace(strings.ToLower(mode))
	switch mode {
	case "":
		return ModeInsert, nil
	case ModeInsert, ModeUpsert:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported ingest mode %q", mode)
	}
}

// record is the persisted document shape shared by the file-backed stores.
type record struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Provider   string    `json:"news_provided_by"`
	Content    string    `json:"content"`
	IngestedAt time.Time `json:"_ingested_at"`
}

func newRecord(a domain.Article, now time.Time) record {
	return record{
		URL:        a.URL,
		Title:      a.Title,
		Date:       a.PublishedAt,
		Provider:   a.Provider,
		Content:    a.Content,
		IngestedAt: now.UTC(),
	}
}

func (r record) stored(id string) domain.StoredArticle {
	return domain.StoredArticle{
		ID: id,
		Article: domain.Article{
			URL:         r.URL,
			Title:       r.Title,
			PublishedAt: r.Date,
			Provider:    r.Provider,
			Content:     r.Content,
		},
		IngestedAt: r.IngestedAt,
	}
}
