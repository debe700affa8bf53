package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeIdempotent(t *testing.T) {
	cases := []string{
		"/path/to/page?x=1",
		"https://example.org/a/b",
		"javascript:void(0)",
		"<script>",
		"http://127.0.0.1:8080/",
		"",
		"no-word-chars-!@#$%",
	}
	for _, c := range cases {
		once := Sanitize(c)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "sanitize must be idempotent for %q", c)
	}
}

func TestSanitizeRejectsNoise(t *testing.T) {
	rejects := []string{
		"javascript:alert(1)",
		"<div>",
		"/node_modules/foo",
		"https://www.w3.org/schema",
		"http://example.com/",
		"jquery-3.6.0.min.js",
		"this.src",
		"a.replace(x)",
		"location.href",
		"application/x-www-form-urlencoded",
		"http://127.0.0.1/",
		"http://localhost:8888/",
		"!!!",
	}
	for _, r := range rejects {
		assert.Equal(t, "", Sanitize(r), r)
	}
}

func TestSanitizeAcceptsOrdinaryURLs(t *testing.T) {
	accept := []string{
		"/path/to/page",
		"https://example.org/a/b?x=1",
		"path/page.html",
	}
	for _, a := range accept {
		assert.NotEqual(t, "", Sanitize(a), a)
	}
}

func TestSanitizeEscapeSequences(t *testing.T) {
	assert.Equal(t, "/a/b", Sanitize(`\/a\/b`))
	assert.Equal(t, "http://x/y", Sanitize("http%3A//x%2Fy"))
}

func TestIsStaticResource(t *testing.T) {
	static := []string{"/a.png", "/b.css", "/c.js.map?x=1", "/d.svg?v=2"}
	for _, s := range static {
		assert.True(t, IsStaticResource(s), s)
	}
	assert.False(t, IsStaticResource("/page.html"))
}

func TestIsStaticResourceStableUnderQueryVariation(t *testing.T) {
	base := IsStaticResource("/style.css")
	withQuery := IsStaticResource("/style.css")
	assert.Equal(t, base, withQuery)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindJS, Classify("/bundle.js"))
	assert.Equal(t, KindJS, Classify("/bundle.js.map"))
	assert.Equal(t, KindJS, Classify("/bundle.js?v=2"))
	assert.Equal(t, KindPage, Classify("/index.html"))
}
