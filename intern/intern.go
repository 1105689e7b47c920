// Package intern deduplicates structurally equal nodes.
package intern

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bawdo/ksqltree/nodes"
)

// DefaultSize is the number of hash buckets kept when New is given a
// non-positive size.
const DefaultSize = 1024

// Interner maps nodes to a canonical instance per equivalence class. It is
// bounded: the least recently used hash bucket is dropped when full.
// An Interner is safe for concurrent use.
type Interner struct {
	mu    sync.Mutex
	cache *lru.Cache[uint64, []nodes.Node]
}

// New returns an Interner holding at most size hash buckets.
func New(size int) *Interner {
	if size <= 0 {
		size = DefaultSize
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[uint64, []nodes.Node](size)
	return &Interner{cache: cache}
}

// Intern returns the canonical node equal to n, recording n as canonical
// if none is known. The boolean reports whether an earlier instance was
// found. A nil node is returned unchanged.
func (in *Interner) Intern(n nodes.Node) (nodes.Node, bool) {
	if n == nil {
		return nil, false
	}
	h := n.Hash()

	in.mu.Lock()
	defer in.mu.Unlock()

	bucket, _ := in.cache.Get(h)
	for _, c := range bucket {
		if c.Equal(n) {
			return c, true
		}
	}
	grown := make([]nodes.Node, len(bucket), len(bucket)+1)
	copy(grown, bucket)
	in.cache.Add(h, append(grown, n))
	return n, false
}

// Len returns the number of canonical nodes held.
func (in *Interner) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()

	total := 0
	for _, h := range in.cache.Keys() {
		if bucket, ok := in.cache.Peek(h); ok {
			total += len(bucket)
		}
	}
	return total
}

// Values returns the canonical nodes, least recently used bucket first.
func (in *Interner) Values() []nodes.Node {
	in.mu.Lock()
	defer in.mu.Unlock()

	var out []nodes.Node
	for _, h := range in.cache.Keys() {
		if bucket, ok := in.cache.Peek(h); ok {
			out = append(out, bucket...)
		}
	}
	return out
}

// Purge drops every canonical node.
func (in *Interner) Purge() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.cache.Purge()
}
