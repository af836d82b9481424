package domain

import "sync"

// Visited is the cycle guard for one resolution run: the set of content keys
// already expanded. It only grows during a run and is never shared across
// runs.
//
// Add is an atomic insert-if-absent, so two branches racing on the same key
// see exactly one true result. Branches that observed "absent" before either
// marked may still duplicate resolution work for that key; that is accepted
// because content store commits are idempotent.
type Visited struct {
	mu   sync.Mutex
	seen map[InternedString]struct{}
}

// NewVisited creates an empty Visited set.
func NewVisited() *Visited {
	return &Visited{seen: make(map[InternedString]struct{})}
}

// Add inserts the key and reports whether it was newly added.
func (v *Visited) Add(key InternedString) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// Len returns the number of keys marked so far.
func (v *Visited) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
