package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/wire-scout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewStoreSelectsBackend(t *testing.T) {
	ctx := context.Background()

	mem, err := NewStore(ctx, Options{Type: "Memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, mem)

	bolt, err := NewStore(ctx, Options{Type: TypeBBolt, BBoltPath: t.TempDir() + "/a.db", Mode: ModeUpsert})
	require.NoError(t, err)
	require.NoError(t, bolt.Close(ctx))

	_, err = NewStore(ctx, Options{Type: "postgres"})
	assert.Error(t, err)
	_, err = NewStore(ctx, Options{Type: TypeMemory, Mode: "merge"})
	assert.Error(t, err)
	_, err = NewStore(ctx, Options{Type: TypeBBolt})
	assert.Error(t, err)
}

func TestMemoryStoreFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ModeInsert)

	articles := []domain.Article{
		{URL: "u1", Title: "Acme Widgets Ship", Provider: "Acme Corp", Content: "Solar panels", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{URL: "u2", Title: "Other News", Provider: "Beta LLC", Content: "SOLAR farm", PublishedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{URL: "u3", Title: "acme earnings", Provider: "Acme Corp", Content: "wind", PublishedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, a := range articles {
		_, err := store.Save(ctx, a)
		require.NoError(t, err)
	}

	got, err := store.Query(ctx, domain.Filter{Title: "acme"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].Article.URL)
	assert.Equal(t, "u3", got[1].Article.URL)

	got, err = store.Query(ctx, domain.Filter{Content: "solar", Provider: "beta"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].Article.URL)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	got, err = store.Query(ctx, domain.Filter{Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, got, 2, "range bounds are inclusive")

	got, err = store.Query(ctx, domain.Filter{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].Article.URL)
}

func TestMemoryStoreUpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ModeUpsert)

	first, err := store.Save(ctx, domain.Article{URL: "u1", Title: "v1"})
	require.NoError(t, err)
	second, err := store.Save(ctx, domain.Article{URL: "u1", Title: "v2"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.Len())
	got, _ := store.Query(ctx, domain.Filter{})
	assert.Equal(t, "v2", got[0].Article.Title)
}

func TestMemoryStoreConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ModeInsert)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Save(ctx, domain.Article{URL: "same"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, store.Len())
}

func TestBuildFilterEscapesTextAndBoundsDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	q := buildFilter(domain.Filter{Title: "Q1 (2024) +results", Provider: "Acme", Start: &start, End: &end})

	assert.Equal(t, primitive.Regex{Pattern: `Q1 \(2024\) \+results`, Options: "i"}, q["title"])
	assert.Equal(t, primitive.Regex{Pattern: "Acme", Options: "i"}, q["news_provided_by"])
	assert.NotContains(t, q, "content")
	assert.Equal(t, bson.M{"$gte": start, "$lte": end}, q["date"])
}

func TestBuildFilterEmpty(t *testing.T) {
	assert.Empty(t, buildFilter(domain.Filter{}))
}
