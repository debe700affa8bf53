package secrets

import (
	"fmt"
	"regexp"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Backend selects the matching strategy a Matcher uses internally.
// The choice is made once at construction time and never changes
// within a run.
type Backend int

const (
	// BackendFast runs every compiled rule concurrently in a single
	// fan-out pass, trading setup cost (an explicit Init call) for
	// throughput on multi-core hosts.
	BackendFast Backend = iota
	// BackendFallback walks rules one at a time. Always available.
	BackendFallback
)

// Matcher extracts Secret values from arbitrary text.
type Matcher interface {
	Handle(text string) ([]Secret, error)
}

// HandlerError is returned when a Matcher is used incorrectly, e.g.
// calling Handle on an uninitialized FAST backend.
type HandlerError struct {
	Msg string
}

func (e *HandlerError) Error() string { return "secrets: " + e.Msg }

type compiledRule struct {
	name string
	re   *regexp.Regexp
}

func compileRules(rules map[string]string) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for name, src := range rules {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return nil, fmt.Errorf("secrets: compiling rule %q: %w", name, err)
		}
		out = append(out, compiledRule{name: name, re: re})
	}
	return out, nil
}

// RegexMatcher is the only Matcher implementation: a set of rules
// compiled once with case-insensitive semantics, run either fanned
// out across goroutines (BackendFast) or sequentially (BackendFallback).
//
// The FAST backend mirrors the two-phase compile/init contract of a
// native multi-pattern engine (e.g. hyperscan): construction compiles
// the rules, but Handle refuses to run until Init has been called.
type RegexMatcher struct {
	rules   []compiledRule
	backend Backend

	mu          sync.Mutex
	initialized bool
}

// New compiles rules for the given backend. For BackendFallback the
// matcher is immediately usable; for BackendFast, call Init before the
// first Handle (or pass lazyInit=false via NewFast).
func New(rules map[string]string, backend Backend) (*RegexMatcher, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	m := &RegexMatcher{rules: compiled, backend: backend}
	if backend == BackendFallback {
		m.initialized = true
	}
	return m, nil
}

// NewFast compiles rules for BackendFast. When lazyInit is false the
// matcher is initialized immediately, mirroring hyperscan bindings
// whose database build can be deferred by the caller.
func NewFast(rules map[string]string, lazyInit bool) (*RegexMatcher, error) {
	m, err := New(rules, BackendFast)
	if err != nil {
		return nil, err
	}
	if !lazyInit {
		m.Init()
	}
	return m, nil
}

// Init marks a FAST matcher ready to serve Handle calls. It is a
// no-op (but still required) for symmetry with engines that need an
// explicit database-build step.
func (m *RegexMatcher) Init() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
}

// Handle scans text against every compiled rule and returns every
// match found. Order is not guaranteed and duplicates are possible;
// callers dedup via Secret's natural comparability.
func (m *RegexMatcher) Handle(text string) ([]Secret, error) {
	if m.backend == BackendFast {
		m.mu.Lock()
		ready := m.initialized
		m.mu.Unlock()
		if !ready {
			return nil, &HandlerError{Msg: "fast backend used before Init"}
		}
		return m.handleFast(text)
	}
	return m.handleFallback(text), nil
}

// handleFallback iterates rules one at a time, taking group 1 when a
// rule's pattern defines a capture group, else the whole match.
func (m *RegexMatcher) handleFallback(text string) []Secret {
	var out []Secret
	for _, r := range m.rules {
		matches := r.re.FindAllStringSubmatch(text, -1)
		for _, match := range matches {
			out = append(out, Secret{Type: r.name, Data: pickGroup(match)})
		}
	}
	return out
}

// handleFast runs every rule concurrently and merges results. Matching
// is embarrassingly parallel across rules (no shared mutable state
// beyond the result slice, which each goroutine appends to locally).
func (m *RegexMatcher) handleFast(text string) ([]Secret, error) {
	results := make([][]Secret, len(m.rules))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, r := range m.rules {
		i, r := i, r
		g.Go(func() error {
			matches := r.re.FindAllStringSubmatch(text, -1)
			local := make([]Secret, 0, len(matches))
			for _, match := range matches {
				local = append(local, Secret{Type: r.name, Data: pickGroup(match)})
			}
			results[i] = local
			return nil
		})
	}
	_ = g.Wait() // rule matching never returns an error
	var out []Secret
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

func pickGroup(match []string) string {
	if len(match) > 1 && match[1] != "" {
		return match[1]
	}
	return match[0]
}

// fastSupported reports whether the FAST backend is usable on the
// current platform. Real multi-pattern engines (hyperscan and
// friends) commonly lack Windows support; mirrored here so backend
// selection has somewhere real to vary.
func fastSupported() bool {
	return runtime.GOOS != "windows"
}

// SelectBackend makes the process-wide backend decision once, the way
// a host capability probe would: prefer FAST, fall back silently when
// unavailable.
func SelectBackend() Backend {
	if fastSupported() {
		return BackendFast
	}
	return BackendFallback
}

// NewWithDetectedBackend compiles rules using whichever backend
// SelectBackend picks, matching the "get_regex_handler" factory
// pattern: callers only ever see the Matcher interface.
func NewWithDetectedBackend(rules map[string]string) (Matcher, error) {
	backend := SelectBackend()
	if backend == BackendFast {
		return NewFast(rules, false)
	}
	return New(rules, BackendFallback)
}
