package article

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releaseURL = "https://www.prnewswire.com/news-releases/workday-names-cmo.html"

const fullRelease = `<!DOCTYPE html>
<html>
<head>
  <title>Workday Names Emma Chalwin Chief Marketing Officer</title>
  <script type="application/ld+json">
  {
    "@context": "https://schema.org",
    "@type": "NewsArticle",
    "headline": "Metadata Headline",
    "datePublished": "2023-06-13T13:05:00Z",
    "dateModified": "2023-06-14T10:00:00Z",
    "publisher": {"@type": "Organization", "name": "PR Newswire"}
  }
  </script>
</head>
<body>
  <header class="release-header">
    <h1>Workday Names Emma Chalwin
        Chief Marketing Officer</h1>
    <div class="row">
      <p>News provided by</p>
      <a href="/news/workday-inc./"><strong>Workday Inc.</strong></a>
      <p class="mb-no">Jun 13, 2023, 09:05 ET</p>
    </div>
  </header>
  <section class="release-body container">
    <div class="row">
      <div class="col-lg-10 col-lg-offset-1">
        <p>PLEASANTON, Calif., June 13, 2023 /PRNewswire/ -- Workday, Inc. today announced...</p>
        <p>SOURCE Workday Inc.</p>
      </div>
    </div>
  </section>
</body>
</html>`

const bodyOnlyRelease = `<html><body>
  <header class="release-header">
    <h1>Drink Up, Collect 'Em All</h1>
    <a href="/news/whataburger/"><strong>Whataburger</strong></a>
    <p class="mb-no">June 10, 2025 1:39 PM ET</p>
  </header>
  <section class="release-body"><div class="col-lg-10">
     SAN ANTONIO, June 10, 2025 -- cups are back.

     SOURCE Whataburger
  </div></section>
</body></html>`

const metadataOnlyRelease = `<html><head>
  <script type="application/ld+json">{"headline": "Only In Metadata", "datePublished": "2024-02-01T08:00:00-05:00", "publisher": {"name": "PR Newswire"}}</script>
</head><body><p>no header here</p></body></html>`

func TestExtractPrefersBodyOverMetadata(t *testing.T) {
	art, err := Extract(releaseURL, []byte(fullRelease))
	require.NoError(t, err)

	assert.Equal(t, releaseURL, art.URL)
	assert.Equal(t, "Workday Names Emma Chalwin Chief Marketing Officer", art.Title)
	assert.Equal(t, "Workday Inc.", art.Provider)

	want := time.Date(2023, 6, 13, 9, 5, 0, 0, time.FixedZone("", -4*60*60))
	assert.True(t, want.Equal(art.PublishedAt), "got %v", art.PublishedAt)
	_, offset := art.PublishedAt.Zone()
	assert.Equal(t, -4*60*60, offset)

	assert.True(t, strings.HasPrefix(art.Content, "PLEASANTON, Calif., June 13, 2023"))
	assert.True(t, strings.HasSuffix(art.Content, "SOURCE Workday Inc."))
}

func TestParseExposesPublisherAsAuxiliary(t *testing.T) {
	page, err := Parse(releaseURL, []byte(fullRelease))
	require.NoError(t, err)
	assert.Equal(t, "PR Newswire", page.Publisher())
	assert.True(t, page.HasHeader())
}

func TestExtractBodyOnlyWithoutStructuredData(t *testing.T) {
	art, err := Extract("https://wire.test/whataburger", []byte(bodyOnlyRelease))
	require.NoError(t, err)

	assert.Equal(t, "Drink Up, Collect 'Em All", art.Title)
	assert.Equal(t, "Whataburger", art.Provider)
	assert.True(t, time.Date(2025, 6, 10, 17, 39, 0, 0, time.UTC).Equal(art.PublishedAt))
	assert.True(t, strings.HasPrefix(art.Content, "SAN ANTONIO, June 10, 2025"))
	assert.True(t, strings.HasSuffix(art.Content, "SOURCE Whataburger"))
}

func TestExtractWithoutHeaderFailsOnProvider(t *testing.T) {
	page, err := Parse("https://wire.test/meta", []byte(metadataOnlyRelease))
	require.NoError(t, err)

	// Title and date fall back to structured data.
	assert.Equal(t, "Only In Metadata", page.Title())
	date, ok := page.PublishedAt()
	require.True(t, ok)
	assert.True(t, time.Date(2024, 2, 1, 13, 0, 0, 0, time.UTC).Equal(date))

	// Provider has no structured-data fallback.
	_, err = page.Article()
	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, []string{FieldProvider}, ee.Missing)
	assert.Equal(t, "https://wire.test/meta", ee.URL)
}

func TestExtractDateFallsBackToDateModified(t *testing.T) {
	html := `<html><head><script type="application/ld+json">{"dateModified": "2024-03-05T10:00:00+00:00"}</script></head>
<body><header class="release-header"><h1>T</h1><a><strong>P</strong></a><p class="mb-no">sometime soon</p></header></body></html>`

	art, err := Extract("https://wire.test/mod", []byte(html))
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC).Equal(art.PublishedAt))
}

func TestExtractIgnoresInvalidStructuredData(t *testing.T) {
	html := `<html><head><script type="application/ld+json">{not json</script></head>
<body><header class="release-header"><h1>Title</h1><a><strong>Provider</strong></a><p class="mb-no">June 13, 2023 9:05 AM ET</p></header></body></html>`

	page, err := Parse("https://wire.test/bad-json", []byte(html))
	require.NoError(t, err)
	assert.Len(t, page.Warnings(), 1)

	art, err := page.Article()
	require.NoError(t, err)
	assert.Equal(t, "Title", art.Title)
	assert.Equal(t, "", art.Content)
}

func TestExtractReportsEveryMissingField(t *testing.T) {
	_, err := Extract("https://wire.test/empty", []byte(`<html><body><p>nothing</p></body></html>`))

	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, []string{FieldTitle, FieldDate, FieldProvider}, ee.Missing)
	assert.Contains(t, err.Error(), "title, date, provider")
}

func TestExtractNaiveDatelineIsUnresolved(t *testing.T) {
	html := `<html><body><header class="release-header"><h1>T</h1><a><strong>P</strong></a><p class="mb-no">June 13, 2023 9:05 AM</p></header></body></html>`

	_, err := Extract("https://wire.test/naive", []byte(html))
	var ee *ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, []string{FieldDate}, ee.Missing)
}

func TestExtractIsDeterministic(t *testing.T) {
	first, err := Extract(releaseURL, []byte(fullRelease))
	require.NoError(t, err)
	second, err := Extract(releaseURL, []byte(fullRelease))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
