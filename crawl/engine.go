// Package crawl implements the breadth-first crawl engine: the
// worker pool, the BFS scheduling loop, and the post-pass status
// validator that sit on top of fetch, extract, urlfilter, and secrets.
package crawl

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/recon-suite/secretscraper/extract"
	"github.com/recon-suite/secretscraper/fetch"
	"github.com/recon-suite/secretscraper/secrets"
	"github.com/recon-suite/secretscraper/urlfilter"
	"github.com/recon-suite/secretscraper/urlutil"
)

// Options configures one Engine run.
type Options struct {
	MaxDepth       int // <= 0 means unbounded
	MaxPageNum     int // <= 0 means unbounded
	WorkersNum     int
	QueueCapacity  int // 0 means unbounded
	DangerousPaths []string
}

// dequeuePollInterval is how long the scheduling loop sleeps when the
// working queue is momentarily empty but the pool/collector may still
// produce more work.
const dequeuePollInterval = 100 * time.Millisecond

// Engine drives one breadth-first crawl run: seeding, scheduling onto
// the worker pool, per-node processing, and shutdown.
type Engine struct {
	opts      Options
	state     *State
	filter    urlfilter.Filter
	fetcher   *fetch.Fetcher
	extractor *extract.Extractor
	matcher   secrets.Matcher
	logger    *slog.Logger

	queueMu sync.Mutex
	queue   []*URLNode

	pool      *Pool
	collector *Collector

	closeOnce sync.Once
	closed    chan struct{}
}

// New builds an Engine. matcher may be nil to disable secret scanning
// (e.g. in tests that only exercise frontier bookkeeping).
func New(ctx context.Context, opts Options, filter urlfilter.Filter, fetcher *fetch.Fetcher, extractor *extract.Extractor, matcher secrets.Matcher, logger *slog.Logger) *Engine {
	if opts.WorkersNum <= 0 {
		opts.WorkersNum = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	pool := NewPool(ctx, opts.WorkersNum, opts.QueueCapacity)
	return &Engine{
		opts:      opts,
		state:     NewState(),
		filter:    filter,
		fetcher:   fetcher,
		extractor: extractor,
		matcher:   matcher,
		logger:    logger,
		pool:      pool,
		collector: NewCollector(pool, opts.WorkersNum*4),
		closed:    make(chan struct{}),
	}
}

// State exposes the frontier for callers that need a final snapshot
// (output formatting, the post-pass validator).
func (e *Engine) State() *State { return e.state }

// Seed parses every raw seed URL, keeping the ones the filter accepts
// as depth-0 nodes on the working queue. Unparseable seeds are logged
// and skipped rather than failing the whole run.
func (e *Engine) Seed(seeds []string) int {
	accepted := 0
	for _, raw := range seeds {
		node, err := NewURLNode(raw, 0, nil)
		if err != nil {
			e.logger.Warn("skipping unparseable seed", "url", raw, "error", err)
			continue
		}
		if e.filter != nil && !e.filter.Accept(node.URL) {
			continue
		}
		if e.state.MarkVisited(node) {
			e.enqueue(node)
			accepted++
		}
	}
	return accepted
}

func (e *Engine) enqueue(n *URLNode) {
	e.queueMu.Lock()
	e.queue = append(e.queue, n)
	e.queueMu.Unlock()
}

func (e *Engine) dequeue() (*URLNode, bool) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	if len(e.queue) == 0 {
		return nil, false
	}
	n := e.queue[0]
	e.queue = e.queue[1:]
	return n, true
}

func (e *Engine) queueLen() int {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	return len(e.queue)
}

// Run drives the scheduling loop to completion: it terminates when the
// page budget is exhausted, or when the working queue is empty, the
// pool is idle, and no completed task is waiting to be drained.
func (e *Engine) Run(ctx context.Context) {
	consumerDone := make(chan struct{})
	go e.consume(ctx, consumerDone)

	for {
		if e.opts.MaxPageNum > 0 && e.state.TotalPage() >= e.opts.MaxPageNum {
			break
		}
		if e.queueLen() == 0 && e.pool.IsIdle() && e.collector.PendingCompletions() == 0 {
			break
		}

		node, ok := e.dequeue()
		if !ok {
			time.Sleep(dequeuePollInterval)
			continue
		}
		if e.opts.MaxDepth <= 0 || node.Depth <= e.opts.MaxDepth {
			n := node
			e.collector.Submit(func(ctx context.Context) (any, error) {
				e.process(ctx, n)
				return nil, nil
			})
		}
	}

	e.CloseAll()
	<-consumerDone
}

// consume drains the collector's done-channel, logging any task
// failure, until the engine's close latch fires.
func (e *Engine) consume(ctx context.Context, doneSignal chan<- struct{}) {
	defer close(doneSignal)
	for {
		select {
		case <-e.closed:
			return
		case <-ctx.Done():
			return
		case h, ok := <-e.collector.DoneChan():
			if !ok {
				return
			}
			if _, err := h.Wait(ctx); err != nil {
				var poolErr *PoolError
				if errors.As(err, &poolErr) {
					e.logger.Error("crawl task failed", "error", poolErr.Err)
				}
			}
		}
	}
}

// process runs the full per-node pipeline: fetch, record metadata,
// scan for secrets, and (when the body is extendable) harvest and
// enqueue child links.
func (e *Engine) process(ctx context.Context, n *URLNode) {
	if e.opts.MaxPageNum > 0 && e.state.TotalPage() >= e.opts.MaxPageNum {
		return
	}
	if isDangerousPath(n.URL.Path, e.opts.DangerousPaths) {
		return
	}
	e.state.IncrementTotalPage()

	resp := e.fetcher.Fetch(ctx, n.Raw)
	if resp == nil {
		return
	}

	n.ResponseStatus = strconv.Itoa(resp.StatusCode)
	n.Title = resp.Title
	n.ContentLength = resp.ContentLength
	n.ContentType = resp.ContentType

	if e.matcher != nil {
		found, err := e.matcher.Handle(resp.Body)
		if err != nil {
			var handlerErr *secrets.HandlerError
			if errors.As(err, &handlerErr) {
				e.logger.Error("secret matcher misused", "error", err)
			}
		} else {
			e.state.AddSecrets(n, found)
		}
	}

	if !fetch.ExtendableContentType(resp.ContentType) {
		return
	}

	candidates, err := e.extractor.Extract(n.URL, resp.Body)
	if err != nil {
		return
	}

	expanding := e.opts.MaxDepth <= 0 || n.Depth+1 <= e.opts.MaxDepth

	for _, cand := range candidates {
		child, err := NewURLNode(cand.Resolved.String(), n.Depth+1, n)
		if err != nil {
			continue
		}
		if e.state.IsVisited(child) {
			continue
		}
		e.state.AddFound(child)

		if expanding && (e.filter == nil || e.filter.Accept(child.URL)) {
			if e.state.MarkVisited(child) {
				e.enqueue(child)
			}
		}

		kind := KindPage
		if urlutil.Classify(child.URL.Path) == urlutil.KindJS {
			kind = KindJS
		}
		e.state.RecordChild(n, child, kind)
	}
}

// isDangerousPath reports whether path contains any configured
// dangerous-path substring, case-insensitively. A leading "/" on a
// configured entry is optional and ignored.
func isDangerousPath(path string, dangerous []string) bool {
	lowerPath := strings.ToLower(path)
	for _, d := range dangerous {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "/"))
		if d == "" {
			continue
		}
		if strings.Contains(lowerPath, d) {
			return true
		}
	}
	return false
}

// CloseAll trips the close latch and shuts the pool down, cancelling
// both queued and in-flight work. Idempotent.
func (e *Engine) CloseAll() {
	e.closeOnce.Do(func() {
		close(e.closed)
		e.collector.Close(5*time.Second, true, true)
	})
}
