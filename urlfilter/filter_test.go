package urlfilter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestAllowListWildcards(t *testing.T) {
	allow := NewAllowList([]string{"*baidu.com", "*baidu*com"})

	accept := []string{"http://baidu.com", "http://www.baidu.com", "http://www.baidu.xxxx.com"}
	for _, raw := range accept {
		assert.True(t, allow.Accept(mustParse(t, raw)), raw)
	}

	reject := []string{"http://baidu.cn", "http://xxx"}
	for _, raw := range reject {
		assert.False(t, allow.Accept(mustParse(t, raw)), raw)
	}
}

func TestChainOfAllowAndDeny(t *testing.T) {
	chain := NewChain(
		NewAllowList([]string{"*baidu.com"}),
		NewDenyList([]string{"*baidu.sensitive.com"}),
	)

	assert.True(t, chain.Accept(mustParse(t, "http://baidu.com")))
	assert.False(t, chain.Accept(mustParse(t, "http://www.baidu.sensitive.com")))
}

func TestEmptyAllowListMeansInactive(t *testing.T) {
	allow := NewAllowList(nil)
	assert.True(t, allow.Accept(mustParse(t, "http://anything.example")))
}

func TestDenyListCaseInsensitive(t *testing.T) {
	deny := NewDenyList([]string{"*EVIL.com"})
	assert.False(t, deny.Accept(mustParse(t, "http://evil.com")))
	assert.True(t, deny.Accept(mustParse(t, "http://good.com")))
}

func TestHostExtractionStripsPort(t *testing.T) {
	allow := NewAllowList([]string{"example.com"})
	assert.True(t, allow.Accept(mustParse(t, "http://example.com:8080/path")))
}
