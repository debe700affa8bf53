package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recon-suite/secretscraper/extract"
	"github.com/recon-suite/secretscraper/fetch"
	"github.com/recon-suite/secretscraper/urlfilter"
)

// newChainServer serves a linear chain of pages "/", "/p1", "/p2", ...
// each linking only to the next, depthLen pages deep.
func newChainServer(depthLen int) *httptest.Server {
	mux := http.NewServeMux()
	for i := 0; i <= depthLen; i++ {
		i := i
		path := "/"
		if i > 0 {
			path = fmt.Sprintf("/p%d", i)
		}
		next := fmt.Sprintf("/p%d", i+1)
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprintf(w, `<html><body><a href="%s">next</a></body></html>`, next)
		})
	}
	return httptest.NewServer(mux)
}

func buildEngine(t *testing.T, opts Options, filter urlfilter.Filter) *Engine {
	t.Helper()
	fetcher, err := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	require.NoError(t, err)
	extractor := extract.New(nil)
	return New(context.Background(), opts, filter, fetcher, extractor, nil, nil)
}

func TestEngineRespectsMaxDepthAndMaxPage(t *testing.T) {
	srv := newChainServer(10)
	defer srv.Close()

	e := buildEngine(t, Options{MaxDepth: 2, MaxPageNum: 100, WorkersNum: 4}, nil)
	e.Seed([]string{srv.URL + "/"})
	e.Run(context.Background())

	assert.LessOrEqual(t, e.State().TotalPage(), 100)
	for _, n := range e.State().Visited() {
		assert.LessOrEqual(t, n.Depth, 2)
	}
	assert.Equal(t, 3, e.State().TotalPage())
}

func TestEngineStopsAtMaxPageNum(t *testing.T) {
	srv := newChainServer(20)
	defer srv.Close()

	e := buildEngine(t, Options{MaxDepth: 0, MaxPageNum: 3, WorkersNum: 1}, nil)
	e.Seed([]string{srv.URL + "/"})
	e.Run(context.Background())

	assert.LessOrEqual(t, e.State().TotalPage(), 3)
}

func TestEngineVisitedNodesSatisfyFilter(t *testing.T) {
	srv := newChainServer(5)
	defer srv.Close()

	deny := urlfilter.NewDenyList([]string{"*nonexistent*"})
	e := buildEngine(t, Options{MaxDepth: 3, MaxPageNum: 50, WorkersNum: 4}, deny)
	e.Seed([]string{srv.URL + "/"})
	e.Run(context.Background())

	for _, n := range e.State().Visited() {
		assert.True(t, deny.Accept(n.URL))
	}
	assert.Greater(t, len(e.State().Visited()), 0)
}

func TestSeedRejectedByFilterIsNotEnqueued(t *testing.T) {
	deny := urlfilter.NewDenyList([]string{"example.com"})
	e := buildEngine(t, Options{MaxDepth: 1, MaxPageNum: 10, WorkersNum: 1}, deny)
	accepted := e.Seed([]string{"http://example.com/"})
	assert.Equal(t, 0, accepted)
	assert.Equal(t, 0, e.queueLen())
}

func TestDangerousPathSkipsWithoutFetching(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	e := buildEngine(t, Options{MaxDepth: 1, MaxPageNum: 10, WorkersNum: 1, DangerousPaths: []string{"/admin"}}, nil)
	e.Seed([]string{srv.URL + "/admin/secret"})
	e.Run(context.Background())

	assert.False(t, hit)
	assert.Equal(t, 0, e.State().TotalPage())
}

func TestIsDangerousPath(t *testing.T) {
	assert.True(t, isDangerousPath("/admin/console", []string{"/admin"}))
	assert.True(t, isDangerousPath("/ADMIN/console", []string{"admin"}))
	assert.False(t, isDangerousPath("/public", []string{"/admin"}))
}
