package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	articleBucket = "articles"
	urlBucket     = "article_urls"
	keyBytes      = 8
)

// boltStore implements a Store backed by BoltDB. Article keys are big-endian
// sequence numbers, so a cursor walk yields insertion order.
type boltStore struct {
	db   *bolt.DB
	mode string
	now  func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path, mode string) (*boltStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{articleBucket, urlBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &boltStore{db: db, mode: mode, now: time.Now}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close(context.Context) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Save writes a as a JSON document. In upsert mode an existing record with
// the same URL is overwritten in place and keeps its id.
func (b *boltStore) Save(_ context.Context, a domain.Article) (string, error) {
	data, err := json.Marshal(newRecord(a, b.now()))
	if err != nil {
		return "", fmt.Errorf("encode article: %w", err)
	}

	var id uint64
	err = b.db.Update(func(tx *bolt.Tx) error {
		articles := tx.Bucket([]byte(articleBucket))
		urls := tx.Bucket([]byte(urlBucket))
		if articles == nil || urls == nil {
			return fmt.Errorf("article bucket missing")
		}

		key := urls.Get([]byte(a.URL))
		if b.mode != ModeUpsert || len(key) != keyBytes {
			seq, err := articles.NextSequence()
			if err != nil {
				return err
			}
			key = encodeKey(seq)
		}
		id = binary.BigEndian.Uint64(key)

		if err := articles.Put(key, data); err != nil {
			return err
		}
		return urls.Put([]byte(a.URL), key)
	})
	if err != nil {
		return "", fmt.Errorf("save article %s: %w", a.URL, err)
	}
	return strconv.FormatUint(id, 10), nil
}

// Query walks the articles bucket in key order and applies f in process.
func (b *boltStore) Query(ctx context.Context, f domain.Filter) ([]domain.StoredArticle, error) {
	var matched []domain.StoredArticle
	err := b.db.View(func(tx *bolt.Tx) error {
		articles := tx.Bucket([]byte(articleBucket))
		if articles == nil {
			return fmt.Errorf("article bucket missing")
		}

		cursor := articles.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode article %x: %w", k, err)
			}
			item := rec.stored(strconv.FormatUint(binary.BigEndian.Uint64(k), 10))
			if f.Matches(item.Article) {
				matched = append(matched, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	return f.Page(matched), nil
}

func encodeKey(seq uint64) []byte {
	buf := make([]byte, keyBytes)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}
