// Package cache implements the structural-sharing read cache.
//
// Reads hand out frozen clones of engine-owned values. The cache memoizes
// those clones by path, so repeated reads of an unchanged location return the
// same frozen object, and a freshly built parent clone reuses the cached
// clones of its unchanged children.
//
// The owner is responsible for invalidation: Reconcile with the lineage of
// every write, Reset on a root-level write.
package cache

import (
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/value"
)

// ReadCache memoizes frozen clones keyed by the canonical path encoding.
//
// Thread-safety: not safe for concurrent use. The owning container is
// single-threaded.
type ReadCache struct {
	entries map[string]value.Value
}

// New creates an empty cache.
func New() *ReadCache {
	return &ReadCache{entries: make(map[string]value.Value)}
}

// Clone returns a frozen clone of v, the value located at p.
//
// Primitives are returned as is and never cached. For containers, a cached
// clone for p is returned unchanged; otherwise a twin is built whose
// children are themselves produced by Clone at the child paths, then frozen
// and cached.
//
// v must already be reference agnostic (it is engine-owned state).
func (c *ReadCache) Clone(p *path.Path, v value.Value) value.Value {
	switch v.(type) {
	case *value.Object, *value.Array, *value.Blob:
	default:
		return v
	}

	key := p.String()
	if cached, ok := c.entries[key]; ok {
		return cached
	}

	twin := value.Rebuild(v, func(k any, child value.Value) value.Value {
		return c.Clone(p.Child(k), child)
	})
	value.Freeze(twin)
	c.entries[key] = twin
	return twin
}

// Reconcile evicts the entries for every path in paths.
func (c *ReadCache) Reconcile(paths []*path.Path) {
	for _, p := range paths {
		delete(c.entries, p.String())
	}
}

// Reset evicts everything.
func (c *ReadCache) Reset() {
	clear(c.entries)
}

// Has reports whether a clone for p is cached.
func (c *ReadCache) Has(p *path.Path) bool {
	_, ok := c.entries[p.String()]
	return ok
}

// Len returns the number of cached clones.
func (c *ReadCache) Len() int { return len(c.entries) }
