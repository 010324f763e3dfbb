// Package lineage computes the blast radius of a write at a path.
//
// The lineage of a path is every strict ancestor (root first), the path
// itself, and, when the value at the path is a container, every descendant
// path reachable through the container's keys. A write at the path may
// invalidate any cached view of any of these locations: ancestors because
// their subtree changed, descendants because they may have been replaced
// or removed.
package lineage

import (
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/value"
)

// Compute returns the lineage of p given the value currently at p.
// Ordering is deterministic: ancestors from the root, then p, then
// descendants depth-first in key order. Every path is interned by p's
// factory. v may be nil when nothing is stored at p.
func Compute(p *path.Path, v value.Value) []*path.Path {
	out := make([]*path.Path, 0, p.Len()+1)
	out = appendAncestors(out, p)
	out = append(out, p)
	return appendDescendants(out, p, v)
}

// Ancestors returns the strict ancestors of p, root first.
func Ancestors(p *path.Path) []*path.Path {
	return appendAncestors(make([]*path.Path, 0, p.Len()), p)
}

// Descendants returns every path strictly below p within v.
func Descendants(p *path.Path, v value.Value) []*path.Path {
	return appendDescendants(nil, p, v)
}

func appendAncestors(out []*path.Path, p *path.Path) []*path.Path {
	start := len(out)
	for cur := p.Parent(); cur != nil; cur = cur.Parent() {
		out = append(out, cur)
	}
	// reverse to root-first
	for i, j := start, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func appendDescendants(out []*path.Path, p *path.Path, v value.Value) []*path.Path {
	switch val := v.(type) {
	case *value.Object:
		val.Range(func(key string, child value.Value) bool {
			cp := p.Child(key)
			out = append(out, cp)
			out = appendDescendants(out, cp, child)
			return true
		})
	case *value.Array:
		val.Range(func(i int, child value.Value) bool {
			cp := p.Child(i)
			out = append(out, cp)
			out = appendDescendants(out, cp, child)
			return true
		})
	}
	return out
}
