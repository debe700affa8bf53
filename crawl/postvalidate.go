package crawl

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// PostValidate re-fetches every URLNode recorded in url_dict/js_dict
// (bases and children alike) whose response status is not a plain
// digit string, assigning each a final status from a fresh,
// short-timeout client. Every such node is validated exactly once,
// regardless of which dict or how many times it appears as a child.
// Fetch failures are swallowed: a node that still can't be reached
// simply keeps its prior non-numeric status.
func PostValidate(ctx context.Context, state *State, concurrency int, timeout time.Duration) {
	client := &http.Client{Timeout: timeout}
	pending := collectNonNumeric(state)

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for _, node := range pending {
		node := node
		g.Go(func() error {
			validateOne(gctx, client, node)
			return nil
		})
	}
	_ = g.Wait()
}

func collectNonNumeric(state *State) []*URLNode {
	seen := make(map[string]*URLNode)
	add := func(n *URLNode) {
		if n == nil || isAllDigits(n.ResponseStatus) {
			return
		}
		seen[n.Key()] = n
	}
	for base, children := range state.URLDictBases() {
		add(base)
		for _, c := range children {
			add(c)
		}
	}
	for base, children := range state.JSDictBases() {
		add(base)
		for _, c := range children {
			add(c)
		}
	}
	out := make([]*URLNode, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	return out
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateOne(ctx context.Context, client *http.Client, node *URLNode) {
	var status int
	err := retryWithBackoff(ctx, defaultRetryConfig(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, node.Raw, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		status = resp.StatusCode
		return nil
	})
	if err != nil {
		return
	}
	node.ResponseStatus = strconv.Itoa(status)
}
