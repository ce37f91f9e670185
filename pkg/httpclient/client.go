package httpclient

import (
	"context"
	"fmt"
	"strings"
)

// Response is the slice of an HTTP response the crawler reads.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP GETs so sitemap and page fetchers can be tested with fakes.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// FetchError reports a transport failure or a non-2xx response while
// retrieving a sitemap or an article page. StatusCode is zero for transport
// failures.
type FetchError struct {
	URL        string
	StatusCode int
	Snippet    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d body: %s", e.URL, e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// GetOK performs a GET and returns the body of a 2xx response. Every failure
// is returned as a *FetchError.
func GetOK(ctx context.Context, client Client, url string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &FetchError{URL: url, StatusCode: code, Snippet: ResponseSnippet(body)}
	}
	return body, nil
}

// ResponseSnippet trims a response body for inclusion in error messages.
func ResponseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
