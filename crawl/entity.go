package crawl

import (
	"fmt"
	"net/url"
)

// URLNode is one crawled (or discovered-but-not-crawled) URL. Identity
// is defined solely by the parsed URL: two nodes built from the same
// URL are equal and hash equal regardless of depth, parent, title, or
// status. Parent is a non-owning reference kept only for site-map
// context — it must never be used for dedup or equality.
type URLNode struct {
	Raw    string
	URL    *url.URL
	Depth  int
	Parent *URLNode

	ResponseStatus string
	Title          string
	ContentLength  int64
	ContentType    string
}

// NewURLNode parses raw and builds a node at depth, anchored to
// parent (nil for a seed). It fails if parent is present and depth
// does not strictly exceed parent's depth — the invariant that keeps
// the BFS frontier acyclic.
func NewURLNode(raw string, depth int, parent *URLNode) (*URLNode, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("crawl: parsing %q: %w", raw, err)
	}
	if parent != nil && depth <= parent.Depth {
		return nil, fmt.Errorf("crawl: node depth %d must exceed parent depth %d", depth, parent.Depth)
	}
	return &URLNode{
		Raw:            raw,
		URL:            parsed,
		Depth:          depth,
		Parent:         parent,
		ResponseStatus: "Unknown",
		ContentLength:  -1,
	}, nil
}

// Key returns the node's identity key: scheme and host lowercased (DNS
// names are case-insensitive; paths are not), path, query, and
// fragment verbatim. Two nodes with the same Key are the same node for
// every dedup purpose in the engine.
func (n *URLNode) Key() string {
	u := n.URL
	host := u.Host
	return lowerASCII(u.Scheme) + "://" + lowerASCII(host) + u.Path + "?" + u.RawQuery + "#" + u.Fragment
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// Equal reports whether n and other share the same identity.
func (n *URLNode) Equal(other *URLNode) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Key() == other.Key()
}
