package engine

import (
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/value"
)

// resolve walks p from root. Object levels take field keys, array levels
// take index keys; any other combination does not resolve.
func resolve(root value.Value, p *path.Path) (value.Value, bool) {
	cur := root
	for _, k := range p.Keys() {
		next, ok := child(cur, k)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func child(v value.Value, k path.Key) (value.Value, bool) {
	switch c := v.(type) {
	case *value.Object:
		if k.IsIndex() {
			return nil, false
		}
		return c.Get(k.Name())
	case *value.Array:
		if !k.IsIndex() {
			return nil, false
		}
		return c.At(k.Index())
	default:
		return nil, false
	}
}

// parentOf returns the container holding the last key of p.
func (c *Container) parentOf(p *path.Path) (value.Value, error) {
	if p.IsRoot() {
		return nil, newError(ErrCodeNoContainer, p.String(), "the root has no parent")
	}
	parent, ok := resolve(c.root, p.Parent())
	if !ok {
		return nil, newError(ErrCodePathNotFound, p.Parent().String(), "parent does not exist")
	}
	if !value.IsContainer(parent) {
		return nil, newError(ErrCodeNoContainer, p.Parent().String(), "parent is not a container")
	}
	return parent, nil
}
