package storage

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
)

// MemoryStore keeps articles in process. Used by tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	mode   string
	items  []domain.StoredArticle
	byURL  map[string]int
	nextID uint64
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore. An unknown mode behaves as insert.
func NewMemoryStore(mode string) *MemoryStore {
	return &MemoryStore{
		mode:  mode,
		byURL: make(map[string]int),
		now:   time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, a domain.Article) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := domain.StoredArticle{Article: a, IngestedAt: m.now().UTC()}
	if idx, ok := m.byURL[a.URL]; ok && m.mode == ModeUpsert {
		item.ID = m.items[idx].ID
		m.items[idx] = item
		return item.ID, nil
	}

	m.nextID++
	item.ID = strconv.FormatUint(m.nextID, 10)
	m.items = append(m.items, item)
	m.byURL[a.URL] = len(m.items) - 1
	return item.ID, nil
}

func (m *MemoryStore) Query(_ context.Context, f domain.Filter) ([]domain.StoredArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []domain.StoredArticle
	for _, item := range m.items {
		if f.Matches(item.Article) {
			matched = append(matched, item)
		}
	}
	return f.Page(matched), nil
}

// Len reports the number of stored records.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryStore) Close(context.Context) error { return nil }
