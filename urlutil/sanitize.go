// Package urlutil normalizes raw href/text candidates into clean URLs
// and classifies them as page or JavaScript assets.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// noisePattern matches fragments that mark a candidate as junk rather
// than a real URL: stray markup, template placeholders, form-encoded
// MIME types, JS property accesses mistaken for paths, and so on.
var noisePattern = regexp.MustCompile(
	`<|>|\{|\}|\[|\]|\||\^|;|/node_modules/|www\.w3\.org|example\.com|` +
		`jquery[-.\w]*?\.js|\.src|\.replace|\.url|\.att|\.href|location\.href|` +
		`javascript:|location:|application/x-www-form-urlencoded|\.createObject|` +
		`:location|\.path|\*#__PURE__\*|\*\$0\*|\n`,
)

var wordPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// Sanitize normalizes a raw href/candidate string, returning "" when
// the candidate is not worth treating as a URL. Idempotent: calling
// Sanitize on its own output returns the same string unchanged.
func Sanitize(raw string) string {
	s := strings.ReplaceAll(raw, " ", "")
	s = strings.ReplaceAll(s, `\/`, "/")
	s = strings.ReplaceAll(s, "%3A", ":")
	s = strings.ReplaceAll(s, "%2F", "/")

	if !wordPattern.MatchString(s) {
		return ""
	}
	if noisePattern.MatchString(s) {
		return ""
	}
	if strings.HasPrefix(strings.TrimSpace(s), "javascript") {
		return ""
	}

	parsed, err := url.Parse(s)
	if err == nil {
		host := strings.ToLower(parsed.Host)
		if host == "127.0.0.1" || strings.HasPrefix(host, "127.0.0.1") || strings.HasPrefix(host, "localhost") {
			return ""
		}
	}
	return s
}

// staticExtensions are suffixes (or "ext?"-style query prefixes) that
// mark a path as a static asset never worth crawling further.
var staticExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".css", ".ico", ".dtd", ".svg", ".scss", ".vue", ".ts",
}

// IsStaticResource reports whether path looks like a static asset.
// Stable under query/fragment-only variation: it only inspects path.
func IsStaticResource(path string) bool {
	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) || strings.Contains(path, ext+"?") {
			return true
		}
	}
	return false
}

// Kind classifies a URL as a general page or a JavaScript asset.
type Kind int

const (
	KindPage Kind = iota
	KindJS
)

// Classify returns KindJS for paths that end in .js/.js.map or embed
// ".js?" (a query string appended to a JS asset), KindPage otherwise.
func Classify(path string) Kind {
	if strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".js.map") || strings.Contains(path, ".js?") {
		return KindJS
	}
	return KindPage
}
