package sitemap

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Namespace is the standard sitemap XML namespace. Element matching below is
// by local name, so documents that omit the namespace parse the same way.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type indexDocument struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []indexEntry `xml:"sitemap"`
}

type indexEntry struct {
	Loc string `xml:"loc"`
}

type urlSetDocument struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

// ParseIndex returns the child sitemap locations of a sitemap index in
// document order. Entries with an empty or missing <loc> are skipped.
func ParseIndex(data []byte) ([]string, error) {
	var doc indexDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode sitemap index: %w", err)
	}

	out := make([]string, 0, len(doc.Sitemaps))
	for _, entry := range doc.Sitemaps {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out, nil
}

// ParseURLSet returns the page locations of a urlset document in document
// order. Entries with an empty or missing <loc> are skipped.
func ParseURLSet(data []byte) ([]string, error) {
	var doc urlSetDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode urlset: %w", err)
	}

	out := make([]string, 0, len(doc.URLs))
	for _, entry := range doc.URLs {
		if loc := strings.TrimSpace(entry.Loc); loc != "" {
			out = append(out, loc)
		}
	}
	return out, nil
}
