// Package fetch performs the crawler's single HTTP operation: given a
// URL, return a Response or nil. No error ever escapes Fetch — a dead
// host, a timeout, and a malformed URL all look the same to the
// caller, which simply treats the node as unreachable.
package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes = 2 * 1024 * 1024
	cacheTTL     = 60 * time.Second
)

// Options configures a Fetcher. Zero values fall back to sane
// defaults the way the teacher's prober config does.
type Options struct {
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	Proxy           string
	Headers         map[string]string
	UserAgent       string
	RateLimit       int // requests/sec across the whole Fetcher; 0 = unlimited
}

// Response is everything the crawl engine needs out of one fetch:
// enough to record a URLNode's status/title/content metadata and to
// run extraction and secret scanning over Body.
type Response struct {
	URL           string
	StatusCode    int
	ContentType   string
	ContentLength int64
	Title         string
	Body          string
}

// Fetcher issues GET requests with a shared connection pool, optional
// rate limiting, and a short-lived response cache.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	headers   map[string]string
	userAgent string
	cache     *cache
}

// New builds a Fetcher. TLS verification is always disabled: the
// crawler's job is to reach content, not to validate certificates.
func New(opts Options) (*Fetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 5
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{Transport: transport, Timeout: opts.Timeout}
	if opts.FollowRedirects {
		maxRedirects := opts.MaxRedirects
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		}
	} else {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}

	return &Fetcher{
		client:    client,
		limiter:   limiter,
		headers:   opts.Headers,
		userAgent: opts.UserAgent,
		cache:     newCache(cacheTTL),
	}, nil
}

// Fetch retrieves rawURL, returning nil on any failure: a network
// error, a non-2xx-but-unreadable response, a cancelled context.
// Successful results are cached by exact URL string for cacheTTL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) *Response {
	if cached, ok := f.cache.get(rawURL); ok {
		return cached
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil
	}

	result := &Response{
		URL:           rawURL,
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: parseContentLength(resp.Header.Get("Content-Length")),
		Title:         extractTitle(string(body)),
		Body:          string(body),
	}
	f.cache.put(rawURL, result)
	return result
}

// parseContentLength returns the parsed Content-Length header, or -1
// when it is absent or unparseable.
func parseContentLength(header string) int64 {
	if header == "" {
		return -1
	}
	n, err := strconv.ParseInt(header, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// extractTitle returns every <title> element's text, with interior
// newlines flattened to spaces, joined by "|". Malformed HTML yields
// no title rather than erroring.
func extractTitle(body string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var titles []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			titles = append(titles, flattenText(n))
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return strings.Join(titles, "|")
}

func flattenText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	flattened := strings.ReplaceAll(sb.String(), "\r\n", " ")
	flattened = strings.ReplaceAll(flattened, "\n", " ")
	flattened = strings.ReplaceAll(flattened, "\r", " ")
	return strings.TrimSpace(flattened)
}

// ExtendableContentType reports whether a response body is worth
// running extraction/secret-scanning over: a missing content type, any
// text/* type, or any application/* type except octet-stream and pdf.
func ExtendableContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if ct == "" {
		return true
	}
	if strings.HasPrefix(ct, "text/") {
		return true
	}
	if strings.HasPrefix(ct, "application/") {
		return !strings.Contains(ct, "octet-stream") && !strings.Contains(ct, "pdf")
	}
	return false
}
