package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/wire-scout/internal/domain"
)

const (
	paramTitle    = "title"
	paramContent  = "content"
	paramProvider = "news_provider"
	paramStart    = "start_date"
	paramEnd      = "end_date"
	paramSkip     = "skip"
	paramLimit    = "limit"

	// responseDateLayout renders dates in UTC without an offset.
	responseDateLayout = "2006-01-02T15:04:05"
)

// Layouts accepted for date parameters. Values without an offset are UTC.
var (
	zonedDateLayouts = []string{time.RFC3339Nano}
	naiveDateLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02",
	}
)

// parseFilter reads every filter parameter and reports all invalid ones.
func parseFilter(c *gin.Context) (domain.Filter, []*ValidationError) {
	f := domain.Filter{
		Title:    strings.TrimSpace(c.Query(paramTitle)),
		Content:  strings.TrimSpace(c.Query(paramContent)),
		Provider: strings.TrimSpace(c.Query(paramProvider)),
	}

	var errs []*ValidationError
	if raw, ok := c.GetQuery(paramStart); ok {
		t, err := parseDateParam(paramStart, raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			f.Start = &t
		}
	}
	if raw, ok := c.GetQuery(paramEnd); ok {
		t, err := parseDateParam(paramEnd, raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			f.End = &t
		}
	}
	if raw, ok := c.GetQuery(paramSkip); ok {
		n, err := parseCountParam(paramSkip, raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			f.Skip = n
		}
	}
	if raw, ok := c.GetQuery(paramLimit); ok {
		n, err := parseCountParam(paramLimit, raw)
		if err != nil {
			errs = append(errs, err)
		} else {
			f.Limit = n
		}
	}
	return f, errs
}

func parseDateParam(field, raw string) (time.Time, *ValidationError) {
	s := strings.TrimSpace(raw)
	for _, layout := range zonedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{
		Field: field,
		Type:  "datetime_from_date_parsing",
		Msg:   "Input should be a valid datetime",
		Input: raw,
	}
}

func parseCountParam(field, raw string) (int64, *ValidationError) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &ValidationError{
			Field: field,
			Type:  "int_parsing",
			Msg:   "Input should be a valid integer, unable to parse string as an integer",
			Input: raw,
		}
	}
	if n < 0 {
		return 0, &ValidationError{
			Field: field,
			Type:  "greater_than_equal",
			Msg:   "Input should be greater than or equal to 0",
			Input: raw,
		}
	}
	return n, nil
}

// articleView is the public JSON shape of a stored article.
type articleView struct {
	Title          string `json:"title"`
	Date           string `json:"date"`
	NewsProvidedBy string `json:"news_provided_by"`
	Content        string `json:"content"`
}

func toViews(items []domain.StoredArticle) []articleView {
	out := make([]articleView, 0, len(items))
	for _, it := range items {
		out = append(out, articleView{
			Title:          it.Article.Title,
			Date:           it.Article.PublishedAt.UTC().Format(responseDateLayout),
			NewsProvidedBy: it.Article.Provider,
			Content:        it.Article.Content,
		})
	}
	return out
}
