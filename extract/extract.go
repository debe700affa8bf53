// Package extract pulls candidate URLs out of a fetched page body,
// using two independent sub-extractors: a lenient HTML tag walk and a
// regex pass reusing the secret-matcher engine under a dedicated
// URL-finding rule set.
package extract

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/recon-suite/secretscraper/secrets"
	"github.com/recon-suite/secretscraper/urlutil"
)

// Candidate is a resolved URL found in a page body, paired with the
// raw text it came from (kept for diagnostics, not identity).
type Candidate struct {
	Raw      string
	Resolved *url.URL
}

// BuildFinderRules turns the configured urlFind/jsFind pattern lists
// into a single named rule set, mirroring facade.py's
// "urlFinder_{i}" naming so both lists feed one matcher.
func BuildFinderRules(urlFind, jsFind []string) map[string]string {
	all := make([]string, 0, len(urlFind)+len(jsFind))
	all = append(all, urlFind...)
	all = append(all, jsFind...)
	rules := make(map[string]string, len(all))
	for i, pattern := range all {
		rules[ruleName(i)] = pattern
	}
	return rules
}

func ruleName(i int) string {
	return "urlFinder_" + strconv.Itoa(i)
}

// Extractor finds child URL candidates in a fetched body.
type Extractor struct {
	regex secrets.Matcher
}

// New builds an Extractor backed by the given URL-finding matcher
// (built via BuildFinderRules + secrets.NewWithDetectedBackend, or any
// other Matcher implementation).
func New(regex secrets.Matcher) *Extractor {
	return &Extractor{regex: regex}
}

// Extract returns every distinct child candidate reachable from body,
// resolved against base. Candidates with a non-http(s) scheme (mailto:,
// tel:, data:, ...) are dropped; everything else is left for the
// caller to classify and filter further.
func (e *Extractor) Extract(base *url.URL, body string) ([]Candidate, error) {
	seen := make(map[string]Candidate)

	for _, c := range harvestHTML(base, body) {
		seen[c.Resolved.String()] = c
	}

	if e.regex != nil {
		found, err := e.regex.Handle(body)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if c, ok := resolve(base, f.Data); ok {
				seen[c.Resolved.String()] = c
			}
		}
	}

	out := make([]Candidate, 0, len(seen))
	for _, c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resolved.String() < out[j].Resolved.String() })
	return out, nil
}

// harvestHTML walks an HTML document collecting href/src attributes
// off <a>, <link>, and <script src="...js"> tags. Parse errors yield
// no candidates rather than propagating: malformed HTML is common in
// the wild and shouldn't abort extraction.
func harvestHTML(base *url.URL, body string) []Candidate {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil
	}
	var out []Candidate
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href, ok := attrOf(n, "href"); ok {
					if c, ok := resolve(base, href); ok {
						out = append(out, c)
					}
				}
			case "script":
				if src, ok := attrOf(n, "src"); ok && strings.HasSuffix(strings.ToLower(pathOf(src)), ".js") {
					if c, ok := resolve(base, src); ok {
						out = append(out, c)
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return out
}

func attrOf(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func pathOf(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return u.Path
	}
	return raw
}

// resolve sanitizes raw, parses it, and resolves it against base. Only
// http(s) results are kept.
func resolve(base *url.URL, raw string) (Candidate, bool) {
	clean := urlutil.Sanitize(raw)
	if clean == "" {
		return Candidate{}, false
	}
	ref, err := url.Parse(clean)
	if err != nil {
		return Candidate{}, false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return Candidate{}, false
	}
	if urlutil.IsStaticResource(abs.Path) {
		return Candidate{}, false
	}
	return Candidate{Raw: raw, Resolved: abs}, true
}
