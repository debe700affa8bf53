package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchReturnsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><head><title>Hello</title></head></html>"))
	}))
	defer srv.Close()

	f, err := New(Options{})
	require.NoError(t, err)

	resp := f.Fetch(context.Background(), srv.URL)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "Hello", resp.Title)
	assert.Contains(t, resp.ContentType, "text/html")
}

func TestFetchJoinsMultipleTitlesAndFlattensNewlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>First\nLine</title></head><body><svg><title>Second</title></svg></body></html>"))
	}))
	defer srv.Close()

	f, err := New(Options{})
	require.NoError(t, err)

	resp := f.Fetch(context.Background(), srv.URL)
	require.NotNil(t, resp)
	assert.Equal(t, "First Line|Second", resp.Title)
}

func TestFetchSetsContentLengthFromHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "12345")
		w.Write([]byte("short body"))
	}))
	defer srv.Close()

	f, err := New(Options{})
	require.NoError(t, err)

	resp := f.Fetch(context.Background(), srv.URL)
	require.NotNil(t, resp)
	assert.EqualValues(t, 12345, resp.ContentLength)
}

func TestFetchContentLengthDefaultsToMinusOneWithoutHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Del("Content-Length")
		flusher, ok := w.(http.Flusher)
		w.Write([]byte("x"))
		if ok {
			flusher.Flush()
		}
	}))
	defer srv.Close()

	f, err := New(Options{})
	require.NoError(t, err)

	resp := f.Fetch(context.Background(), srv.URL)
	require.NotNil(t, resp)
	assert.EqualValues(t, -1, resp.ContentLength)
}

func TestFetchUnreachableHostReturnsNil(t *testing.T) {
	f, err := New(Options{Timeout: 200 * time.Millisecond})
	require.NoError(t, err)
	resp := f.Fetch(context.Background(), "http://127.0.0.1:1")
	assert.Nil(t, resp)
}

func TestFetchMalformedURLReturnsNil(t *testing.T) {
	f, err := New(Options{})
	require.NoError(t, err)
	resp := f.Fetch(context.Background(), "://not-a-url")
	assert.Nil(t, resp)
}

func TestFetchCachesWithinTTL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f, err := New(Options{})
	require.NoError(t, err)

	first := f.Fetch(context.Background(), srv.URL)
	second := f.Fetch(context.Background(), srv.URL)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchDoesNotFollowRedirectsByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	f, err := New(Options{FollowRedirects: false})
	require.NoError(t, err)
	resp := f.Fetch(context.Background(), srv.URL)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestExtendableContentType(t *testing.T) {
	assert.True(t, ExtendableContentType(""))
	assert.True(t, ExtendableContentType("text/plain; charset=utf-8"))
	assert.True(t, ExtendableContentType("application/json"))
	assert.False(t, ExtendableContentType("application/octet-stream"))
	assert.False(t, ExtendableContentType("application/pdf"))
	assert.False(t, ExtendableContentType("image/png"))
}
