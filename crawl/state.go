package crawl

import (
	"sync"

	"github.com/recon-suite/secretscraper/secrets"
)

// State holds everything the BFS frontier needs: dedup sets, the
// base→children maps split by kind, per-node secret findings, and the
// page counter. Conceptually it is mutated from one cooperative
// scheduling context; in this implementation several worker goroutines
// touch it concurrently (one per in-flight node), so every access goes
// through mu rather than relying on single-threaded scheduling.
type State struct {
	mu sync.Mutex

	visited map[string]*URLNode
	found   map[string]*URLNode

	urlDict    map[string]map[string]*URLNode
	jsDict     map[string]map[string]*URLNode
	urlSecrets map[string]map[secrets.Secret]struct{}

	totalPage int
}

// NewState builds an empty frontier, ready for a single crawl run.
func NewState() *State {
	return &State{
		visited:    make(map[string]*URLNode),
		found:      make(map[string]*URLNode),
		urlDict:    make(map[string]map[string]*URLNode),
		jsDict:     make(map[string]map[string]*URLNode),
		urlSecrets: make(map[string]map[secrets.Secret]struct{}),
	}
}

// MarkVisited records n as visited if it isn't already, reporting
// whether this call was the one that added it.
func (s *State) MarkVisited(n *URLNode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := n.Key()
	if _, ok := s.visited[key]; ok {
		return false
	}
	s.visited[key] = n
	return true
}

// IsVisited reports whether n has already been marked visited.
func (s *State) IsVisited(n *URLNode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.visited[n.Key()]
	return ok
}

// Visited returns a snapshot of every visited node.
func (s *State) Visited() []*URLNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*URLNode, 0, len(s.visited))
	for _, n := range s.visited {
		out = append(out, n)
	}
	return out
}

// AddFound records child as discovered (whether or not it will ever be
// crawled), returning whether it was new.
func (s *State) AddFound(child *URLNode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := child.Key()
	if _, ok := s.found[key]; ok {
		return false
	}
	s.found[key] = child
	return true
}

// IsFound reports whether child has already been recorded via AddFound.
func (s *State) IsFound(child *URLNode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.found[child.Key()]
	return ok
}

// Kind classifies which of url_dict/js_dict a child belongs under.
type Kind int

const (
	KindPage Kind = iota
	KindJS
)

// RecordChild files child under base in url_dict or js_dict, creating
// the base's child set on first use (never eagerly).
func (s *State) RecordChild(base, child *URLNode, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dict := s.urlDict
	if kind == KindJS {
		dict = s.jsDict
	}
	baseKey := base.Key()
	if dict[baseKey] == nil {
		dict[baseKey] = make(map[string]*URLNode)
	}
	dict[baseKey][child.Key()] = child
}

// AddSecrets merges found secrets into node's secret set.
func (s *State) AddSecrets(node *URLNode, found []secrets.Secret) {
	if len(found) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := node.Key()
	set := s.urlSecrets[key]
	if set == nil {
		set = make(map[secrets.Secret]struct{}, len(found))
		s.urlSecrets[key] = set
	}
	for _, sec := range found {
		set[sec] = struct{}{}
	}
}

// Secrets returns the deduplicated secrets recorded for node.
func (s *State) Secrets(node *URLNode) []secrets.Secret {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.urlSecrets[node.Key()]
	out := make([]secrets.Secret, 0, len(set))
	for sec := range set {
		out = append(out, sec)
	}
	return out
}

// IncrementTotalPage bumps the processing-attempt counter and returns
// the new value.
func (s *State) IncrementTotalPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalPage++
	return s.totalPage
}

// TotalPage returns the current processing-attempt count.
func (s *State) TotalPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPage
}

// URLDictBases returns every base node that has recorded page
// children, paired with its children.
func (s *State) URLDictBases() map[*URLNode][]*URLNode {
	return s.dictSnapshot(s.urlDict)
}

// JSDictBases returns every base node that has recorded JS children.
func (s *State) JSDictBases() map[*URLNode][]*URLNode {
	return s.dictSnapshot(s.jsDict)
}

func (s *State) dictSnapshot(dict map[string]map[string]*URLNode) map[*URLNode][]*URLNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[*URLNode][]*URLNode, len(dict))
	for baseKey, children := range dict {
		base := s.visited[baseKey]
		if base == nil {
			base = s.found[baseKey]
		}
		childList := make([]*URLNode, 0, len(children))
		for _, c := range children {
			childList = append(childList, c)
		}
		out[base] = childList
	}
	return out
}
