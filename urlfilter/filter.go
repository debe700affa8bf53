// Package urlfilter decides whether a crawled URL should be visited,
// based on a chain of host allow/deny glob patterns.
package urlfilter

import (
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Filter decides whether a URL should be crawled.
type Filter interface {
	Accept(u *url.URL) bool
}

// hostOf extracts the host portion of a netloc, splitting off any
// port the way Python's urlparse.netloc.split(":") does.
func hostOf(u *url.URL) string {
	host := u.Host
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		// guard against IPv6 literals such as "[::1]:8080"
		if !strings.Contains(host[idx:], "]") {
			host = host[:idx]
		}
	}
	return strings.ToLower(host)
}

func compileGlobs(patterns []string) []glob.Glob {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, g)
	}
	return compiled
}

// AllowList accepts a URL iff its host matches at least one pattern.
// An empty pattern list means the caller chose not to build one; it
// is the facade's responsibility to omit AllowList from the chain
// when the user supplied no allow patterns (per spec: an empty
// allow-list is not "reject everything").
type AllowList struct {
	patterns []glob.Glob
}

// NewAllowList compiles the given Unix-glob patterns.
func NewAllowList(patterns []string) *AllowList {
	return &AllowList{patterns: compileGlobs(patterns)}
}

// Accept reports whether u's host matches any configured pattern.
func (f *AllowList) Accept(u *url.URL) bool {
	if len(f.patterns) == 0 {
		return true
	}
	host := hostOf(u)
	for _, g := range f.patterns {
		if g.Match(host) {
			return true
		}
	}
	return false
}

// DenyList accepts a URL iff its host matches none of the patterns.
type DenyList struct {
	patterns []glob.Glob
}

// NewDenyList compiles the given Unix-glob patterns.
func NewDenyList(patterns []string) *DenyList {
	return &DenyList{patterns: compileGlobs(patterns)}
}

// Accept reports whether u's host matches no configured pattern.
func (f *DenyList) Accept(u *url.URL) bool {
	host := hostOf(u)
	for _, g := range f.patterns {
		if g.Match(host) {
			return false
		}
	}
	return true
}

// Chain runs every sub-filter in order; a URL is accepted only if all
// of them accept it.
type Chain struct {
	filters []Filter
}

// NewChain builds a filter chain from the given sub-filters.
func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Accept runs the chain, short-circuiting on the first rejection.
func (c *Chain) Accept(u *url.URL) bool {
	for _, f := range c.filters {
		if !f.Accept(u) {
			return false
		}
	}
	return true
}
