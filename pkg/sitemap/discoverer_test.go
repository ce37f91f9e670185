package sitemap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/wire-scout/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sitemapIndexXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>http://www.example.com/sitemap1.xml</loc></sitemap>
  <sitemap><loc>http://www.example.com/sitemap2.xml</loc></sitemap>
</sitemapindex>`

const sitemapIndexWithEmptyLocXML = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>http://www.example.com/sitemap1.xml</loc></sitemap>
  <sitemap><loc></loc></sitemap>
  <sitemap><lastmod>2024-01-01</lastmod></sitemap>
</sitemapindex>`

const articlesXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://www.prnewswire.com/news-releases/article-1.html</loc></url>
  <url><loc>   </loc></url>
  <url><loc>https://www.prnewswire.com/news-releases/article-2.html</loc></url>
</urlset>`

// fakeResponse lets us stub the httpclient.Client interface.
type fakeResponse struct {
	body       []byte
	statusCode int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.statusCode }

// fakeHTTPClient returns canned responses per URL to avoid network calls.
type fakeHTTPClient struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
}

func (f *fakeHTTPClient) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	resp, ok := f.responses[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return resp, nil
}

func ok(body string) fakeResponse {
	return fakeResponse{body: []byte(body), statusCode: http.StatusOK}
}

func TestParseIndexSkipsEmptyLocations(t *testing.T) {
	urls, err := ParseIndex([]byte(sitemapIndexWithEmptyLocXML))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://www.example.com/sitemap1.xml"}, urls)
}

func TestParseIndexKeepsDocumentOrder(t *testing.T) {
	urls, err := ParseIndex([]byte(sitemapIndexXML))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"http://www.example.com/sitemap1.xml",
		"http://www.example.com/sitemap2.xml",
	}, urls)
}

func TestParseURLSetSkipsEmptyLocations(t *testing.T) {
	urls, err := ParseURLSet([]byte(articlesXML))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.prnewswire.com/news-releases/article-1.html",
		"https://www.prnewswire.com/news-releases/article-2.html",
	}, urls)
}

func TestParseRejectsMalformedXML(t *testing.T) {
	_, err := ParseIndex([]byte(`<not valid xml<<<`))
	require.Error(t, err)
	_, err = ParseURLSet([]byte(`<sitemapindex></sitemapindex>`))
	require.Error(t, err)
}

func TestLinksConcatenatesChildrenInOrder(t *testing.T) {
	client := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://wire.test/index.xml":         ok(sitemapIndexXML),
		"http://www.example.com/sitemap1.xml": ok(`<urlset><url><loc>http://article1.com</loc></url><url><loc>http://article3.com</loc></url></urlset>`),
		"http://www.example.com/sitemap2.xml": ok(`<urlset><url><loc>http://article2.com</loc></url></urlset>`),
	}}

	links, err := Collect(NewDiscoverer(client, "https://wire.test/index.xml").Links(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://article1.com", "http://article3.com", "http://article2.com"}, links)
	assert.Len(t, client.calls, 3)
}

func TestLinksWithEmptyChildLocation(t *testing.T) {
	client := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://wire.test/index.xml":         ok(sitemapIndexWithEmptyLocXML),
		"http://www.example.com/sitemap1.xml": ok(`<urlset><url><loc>http://article1.com</loc></url></urlset>`),
	}}

	links, err := Collect(NewDiscoverer(client, "https://wire.test/index.xml").Links(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://article1.com"}, links)
	assert.Len(t, client.calls, 2)
}

func TestLinksRootFailureIsFatal(t *testing.T) {
	client := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://wire.test/index.xml": {body: []byte("down"), statusCode: http.StatusServiceUnavailable},
	}}

	var yielded []string
	var gotErr error
	for link, err := range NewDiscoverer(client, "https://wire.test/index.xml").Links(context.Background()) {
		if err != nil {
			gotErr = err
			continue
		}
		yielded = append(yielded, link)
	}

	require.Error(t, gotErr)
	assert.ErrorIs(t, gotErr, ErrRootSitemap)
	var fe *httpclient.FetchError
	assert.True(t, errors.As(gotErr, &fe))
	assert.Empty(t, yielded)
}

func TestLinksIsolatesChildFailuresByDefault(t *testing.T) {
	client := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://wire.test/index.xml":         ok(sitemapIndexXML),
		"http://www.example.com/sitemap1.xml": {body: []byte("gone"), statusCode: http.StatusNotFound},
		"http://www.example.com/sitemap2.xml": ok(`<urlset><url><loc>http://article2.com</loc></url></urlset>`),
	}}

	links, err := Collect(NewDiscoverer(client, "https://wire.test/index.xml").Links(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"http://article2.com"}, links)
}

func TestLinksAbortPolicyStopsWalk(t *testing.T) {
	client := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://wire.test/index.xml":         ok(sitemapIndexXML),
		"http://www.example.com/sitemap1.xml": ok(`<urlset><url><loc>http://article1.com</loc></url></urlset>`),
		"http://www.example.com/sitemap2.xml": {body: []byte("gone"), statusCode: http.StatusNotFound},
	}}

	d := NewDiscoverer(client, "https://wire.test/index.xml", WithChildPolicy(AbortOnChildFailure))
	links, err := Collect(d.Links(context.Background()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sitemap2.xml")
	assert.Nil(t, links)
}

func TestLinksStopsFetchingWhenConsumerBreaks(t *testing.T) {
	client := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://wire.test/index.xml":         ok(sitemapIndexXML),
		"http://www.example.com/sitemap1.xml": ok(`<urlset><url><loc>http://article1.com</loc></url></urlset>`),
		"http://www.example.com/sitemap2.xml": ok(`<urlset><url><loc>http://article2.com</loc></url></urlset>`),
	}}

	for link, err := range NewDiscoverer(client, "https://wire.test/index.xml").Links(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, "http://article1.com", link)
		break
	}
	assert.Len(t, client.calls, 2)
}

func TestDiscovererOverHTTP(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/sitemap-news.xml":
			_, _ = w.Write([]byte(strings.ReplaceAll(`<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>ROOT/child.xml</loc></sitemap>
</sitemapindex>`, "ROOT", srv.URL)))
		case "/child.xml":
			_, _ = w.Write([]byte(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url><loc>https://wire.test/a.html</loc></url></urlset>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := NewDiscoverer(
		httpclient.NewRestyClient(2*time.Second, ""),
		srv.URL+"/sitemap-news.xml",
		WithHeaders(map[string]string{"Accept": "application/xml"}),
	)
	links, err := Collect(d.Links(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://wire.test/a.html"}, links)
}

func TestChildSitemapsAndArticleLinks(t *testing.T) {
	client := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://wire.test/index.xml": ok(sitemapIndexXML),
		"https://wire.test/child.xml": ok(articlesXML),
		"https://wire.test/gone.xml":  {statusCode: http.StatusNotFound},
	}}
	d := NewDiscoverer(client, "https://wire.test/index.xml")

	children, err := d.ChildSitemaps(context.Background(), "https://wire.test/index.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://www.example.com/sitemap1.xml", "http://www.example.com/sitemap2.xml"}, children)

	links, err := d.ArticleLinks(context.Background(), "https://wire.test/child.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.prnewswire.com/news-releases/article-1.html",
		"https://www.prnewswire.com/news-releases/article-2.html",
	}, links)

	_, err = d.ArticleLinks(context.Background(), "https://wire.test/gone.xml")
	var fe *httpclient.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}
