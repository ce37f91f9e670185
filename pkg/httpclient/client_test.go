package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOKReturnsBodyOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wire-scout-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/xml", r.Header.Get("Accept"))
		_, _ = w.Write([]byte("<urlset/>"))
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, "wire-scout-test")
	body, err := GetOK(context.Background(), client, srv.URL, map[string]string{"Accept": "application/xml"})
	require.NoError(t, err)
	assert.Equal(t, "<urlset/>", string(body))
}

func TestGetOKWrapsNon2xxAsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := GetOK(context.Background(), NewRestyClient(time.Second, ""), srv.URL, nil)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
	assert.Contains(t, err.Error(), "status 403")
}

type failingClient struct{ err error }

func (f failingClient) Get(context.Context, string, map[string]string) (Response, error) {
	return nil, f.err
}

func TestGetOKWrapsTransportErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := GetOK(context.Background(), failingClient{err: boom}, "https://example.com", nil)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.ErrorIs(t, err, boom)
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", ResponseSnippet([]byte("  ")))
	long := ResponseSnippet([]byte(strings.Repeat("x", 600)))
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.Len(t, long, 515)
}
