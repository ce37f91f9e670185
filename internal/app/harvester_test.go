package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samvad-hq/wire-scout/internal/config"
	"github.com/samvad-hq/wire-scout/internal/domain"
	"github.com/samvad-hq/wire-scout/internal/metrics"
	"github.com/samvad-hq/wire-scout/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releaseHTML = `<html><body>
<header class="release-header">
  <h1>Acme Opens Plant</h1>
  <a href="/news/acme/"><strong>Acme Corp</strong></a>
  <p class="mb-no">Mar 05, 2024, 08:00 ET</p>
</header>
<section class="release-body"><div class="col-lg-10">Acme today opened a plant.</div></section>
</body></html>`

func newWireServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sitemap-news.xml":
			if hits != nil {
				hits.Add(1)
			}
			fmt.Fprintf(w, `<sitemapindex><sitemap><loc>%s/child.xml</loc></sitemap></sitemapindex>`, srv.URL)
		case "/child.xml":
			fmt.Fprintf(w, `<urlset><url><loc>%s/news/acme.html</loc></url></urlset>`, srv.URL)
		case "/news/acme.html":
			fmt.Fprint(w, releaseHTML)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(sitemapURL string) *config.Config {
	return &config.Config{
		AppName:            "wire-scout",
		SitemapURL:         sitemapURL,
		ChildSitemapPolicy: config.ChildPolicyIsolate,
		CrawlConcurrency:   2,
		CrawlInterval:      20 * time.Millisecond,
		HTTPTimeout:        2 * time.Second,
		UserAgent:          "wire-scout-test",
		MaxPageBytes:       1 << 20,
		StorageType:        storage.TypeMemory,
		IngestMode:         config.IngestModeInsert,
	}
}

func TestHarvesterRunOncePersistsArticles(t *testing.T) {
	srv := newWireServer(t, nil)
	store := storage.NewMemoryStore(storage.ModeInsert)
	m := metrics.New(prometheus.NewRegistry())

	h, err := NewHarvester(context.Background(), testConfig(srv.URL+"/sitemap-news.xml"), store, m, nil)
	require.NoError(t, err)
	defer h.Close()

	res, err := h.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempted)
	assert.Equal(t, 1, res.Persisted)

	items, err := store.Query(context.Background(), domain.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Acme Opens Plant", items[0].Article.Title)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesTotal.WithLabelValues("persisted")))
}

func TestHarvesterRunLoopsUntilCancelled(t *testing.T) {
	var hits atomic.Int32
	srv := newWireServer(t, &hits)

	h, err := NewHarvester(context.Background(), testConfig(srv.URL+"/sitemap-news.xml"), storage.NewMemoryStore(storage.ModeUpsert), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	require.Eventually(t, func() bool { return hits.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("harvester did not stop after cancellation")
	}
}

func TestNewHarvesterLoadsPublishersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publishers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
publishers:
  - id: hook
    type: http
    http:
      url: http://127.0.0.1:1/hook
`), 0o644))

	cfg := testConfig("http://127.0.0.1:1/sitemap.xml")
	cfg.PublishersFile = path

	h, err := NewHarvester(context.Background(), cfg, storage.NewMemoryStore(storage.ModeInsert), nil, nil)
	require.NoError(t, err)
	defer h.Close()
	assert.Equal(t, 1, h.fanout.Size())

	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewHarvester(context.Background(), cfg, storage.NewMemoryStore(storage.ModeInsert), nil, nil)
	assert.Error(t, err)
}

func TestOpenStoreMemoryAndBolt(t *testing.T) {
	cfg := testConfig("http://unused")
	store, err := OpenStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	CloseStore(context.Background(), store, nil)

	cfg.StorageType = storage.TypeBBolt
	cfg.BBoltPath = filepath.Join(t.TempDir(), "data", "articles.db")
	store, err = OpenStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	CloseStore(context.Background(), store, nil)
	assert.FileExists(t, cfg.BBoltPath)
}
