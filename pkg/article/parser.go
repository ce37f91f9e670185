// Package article turns a fetched press-release page into a domain.Article.
//
// Parse reads the page once into an immutable Page holding every candidate
// value; Page.Article reconciles those candidates with a fixed fallback chain:
//
//	title:    body <h1>           → JSON-LD headline
//	date:     body dateline       → JSON-LD datePublished → JSON-LD dateModified
//	provider: body "a > strong"   (no fallback)
//	content:  body release text   (no fallback)
package article

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/wire-scout/internal/domain"
)

const (
	headerSelector   = "header.release-header"
	titleSelector    = "h1"
	datelineSelector = "p.mb-no"
	providerSelector = "a > strong"
	contentSelector  = "section.release-body .col-lg-10"
	jsonLDSelector   = `script[type="application/ld+json"]`
)

// Page holds the candidate values read from one article page.
type Page struct {
	url string

	hasHeader    bool
	bodyTitle    string
	bodyProvider string
	dateline     string
	bodyDate     time.Time
	content      string

	meta metadata

	warnings []string
}

type metadata struct {
	headline      string
	datePublished time.Time
	dateModified  time.Time
	publisher     string
}

// Extract parses html and reconciles it into an Article.
func Extract(url string, html []byte) (domain.Article, error) {
	page, err := Parse(url, html)
	if err != nil {
		return domain.Article{}, err
	}
	return page.Article()
}

// Parse reads html once and captures every candidate field value.
func Parse(url string, html []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse html %s: %w", url, err)
	}

	p := Page{url: url}
	p.readBody(doc)
	p.readMetadata(doc)
	return p, nil
}

func (p *Page) readBody(doc *goquery.Document) {
	header := doc.Find(headerSelector).First()
	if header.Length() > 0 {
		p.hasHeader = true
		p.bodyTitle = cleanText(header.Find(titleSelector).First().Text())
		p.bodyProvider = cleanText(header.Find(providerSelector).First().Text())
		p.dateline = cleanText(header.Find(datelineSelector).First().Text())
	}

	if p.dateline != "" {
		t, err := ParseDateline(p.dateline)
		if err != nil {
			p.warnings = append(p.warnings, fmt.Sprintf("dateline unresolved: %v", err))
		} else {
			p.bodyDate = t
		}
	}

	p.content = strings.TrimSpace(doc.Find(contentSelector).First().Text())
}

func (p *Page) readMetadata(doc *goquery.Document) {
	script := doc.Find(jsonLDSelector).First()
	if script.Length() == 0 {
		return
	}
	raw := strings.TrimSpace(script.Text())
	if raw == "" {
		return
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		p.warnings = append(p.warnings, fmt.Sprintf("json-ld ignored: %v", err))
		return
	}

	p.meta.headline = cleanText(stringField(obj, "headline"))
	p.meta.datePublished = p.metaDate(obj, "datePublished")
	p.meta.dateModified = p.metaDate(obj, "dateModified")
	if pub, ok := obj["publisher"].(map[string]any); ok {
		p.meta.publisher = cleanText(stringField(pub, "name"))
	}
}

func (p *Page) metaDate(obj map[string]any, key string) time.Time {
	raw := stringField(obj, key)
	if raw == "" {
		return time.Time{}
	}
	t, err := ParseDateline(raw)
	if err != nil {
		p.warnings = append(p.warnings, fmt.Sprintf("json-ld %s unresolved: %v", key, err))
		return time.Time{}
	}
	return t
}

// Title resolves the title fallback chain.
func (p Page) Title() string {
	return firstNonEmpty(p.bodyTitle, p.meta.headline)
}

// PublishedAt resolves the date fallback chain. ok is false when no source
// yields an absolute instant.
func (p Page) PublishedAt() (time.Time, bool) {
	for _, t := range []time.Time{p.bodyDate, p.meta.datePublished, p.meta.dateModified} {
		if !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

// Provider returns the body byline provider. There is no metadata fallback.
func (p Page) Provider() string { return p.bodyProvider }

// Content returns the trimmed release body text, or "".
func (p Page) Content() string { return p.content }

// Publisher returns the JSON-LD publisher.name, an auxiliary attribute that
// never takes part in validation.
func (p Page) Publisher() string { return p.meta.publisher }

// HasHeader reports whether the page carried a release header block.
func (p Page) HasHeader() bool { return p.hasHeader }

// Warnings lists non-fatal parse problems (unparseable dateline, bad JSON-LD).
func (p Page) Warnings() []string {
	return append([]string(nil), p.warnings...)
}

// Article validates the reconciled fields and builds the record.
func (p Page) Article() (domain.Article, error) {
	title := p.Title()
	date, hasDate := p.PublishedAt()
	provider := p.Provider()

	var missing []string
	if title == "" {
		missing = append(missing, FieldTitle)
	}
	if !hasDate {
		missing = append(missing, FieldDate)
	}
	if provider == "" {
		missing = append(missing, FieldProvider)
	}
	if len(missing) > 0 {
		return domain.Article{}, &ExtractionError{URL: p.url, Missing: missing}
	}

	return domain.Article{
		URL:         p.url,
		Title:       title,
		PublishedAt: date,
		Provider:    provider,
		Content:     p.content,
	}, nil
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

// cleanText collapses runs of whitespace and trims the ends.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
