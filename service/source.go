package service

import "sync"

// ProofSource hands the authority the ordered sibling digests, leaf to root,
// that make up one item's inclusion proof. Implementations back onto
// whatever holds the tree; the server never inspects the digests it relays.
type ProofSource interface {
	Lookup(item string) ([]string, error)
}

// StaticSource serves proofs from memory: per-item fixtures plus a fallback
// stream for any item without one. It is the test-data source the authority
// runs with when no store is configured.
type StaticSource struct {
	mu       sync.RWMutex
	proofs   map[string][]string
	fallback []string
}

// NewStaticSource returns a source preloaded with the stock fallback proof.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		proofs: make(map[string][]string),
		fallback: []string{
			"5e5bdd83110e1b9aeb9bf23d89211ceb",
			"bfdb43dcb57b4705db1608b61892d638",
		},
	}
}

// Put records the proof stream to serve for item, replacing any previous one.
func (s *StaticSource) Put(item string, nodes []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proofs[item] = append([]string(nil), nodes...)
	return nil
}

// SetFallback replaces the stream served for items without a fixture.
func (s *StaticSource) SetFallback(nodes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = append([]string(nil), nodes...)
}

func (s *StaticSource) Lookup(item string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if nodes, ok := s.proofs[item]; ok {
		return append([]string(nil), nodes...), nil
	}
	return append([]string(nil), s.fallback...), nil
}
