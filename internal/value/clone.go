package value

// Clone returns a reference-free structural copy of v.
//
// Primitives are returned unchanged. Containers and blobs get fresh twins,
// recursively. The result is never frozen, even if v was.
//
// CRITICAL: v must be reference agnostic. Reaching the same container or blob
// twice, whether through aliasing or a cycle, fails with ErrReferenceCycle.
// A nil Value or nil container pointer fails with ErrUncloneable. An object
// holding two distinct keys with the same NFC form fails with
// ErrAmbiguousKey.
func Clone(v Value) (Value, error) {
	c := &cloner{visited: make(map[any]struct{})}
	return c.clone(v, nil)
}

// MustClone is like Clone but panics on error. Use only for values built in
// code, never for caller input.
func MustClone(v Value) Value {
	out, err := Clone(v)
	if err != nil {
		panic(err)
	}
	return out
}

type cloner struct {
	visited map[any]struct{}
}

func (c *cloner) visit(ref any, loc *location) error {
	if _, seen := c.visited[ref]; seen {
		return newCloneError(ErrCodeReferenceCycle, loc, "must be reference agnostic")
	}
	c.visited[ref] = struct{}{}
	return nil
}

func (c *cloner) clone(v Value, loc *location) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, newCloneError(ErrCodeUncloneable, loc, "nil value")
	case Null, String, Number, Bool, BigInt:
		return val, nil
	case *Object:
		if val == nil {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil object")
		}
		if err := c.visit(val, loc); err != nil {
			return nil, err
		}
		twin := &Object{
			keys:   make([]string, 0, len(val.keys)),
			fields: make(map[string]Value, len(val.keys)),
		}
		guard := newKeyGuard(len(val.keys))
		for _, k := range val.keys {
			if err := guard.admit(k, loc.field(k)); err != nil {
				return nil, err
			}
			child, err := c.clone(val.fields[k], loc.field(k))
			if err != nil {
				return nil, err
			}
			twin.keys = append(twin.keys, k)
			twin.fields[k] = child
		}
		return twin, nil
	case *Array:
		if val == nil {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil array")
		}
		if err := c.visit(val, loc); err != nil {
			return nil, err
		}
		twin := &Array{items: make([]Value, len(val.items))}
		for i, item := range val.items {
			child, err := c.clone(item, loc.elem(i))
			if err != nil {
				return nil, err
			}
			twin.items[i] = child
		}
		return twin, nil
	case *Blob:
		if val == nil {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil blob")
		}
		if err := c.visit(val, loc); err != nil {
			return nil, err
		}
		return val.twin(), nil
	default:
		return nil, newCloneError(ErrCodeUncloneable, loc, "unsupported type %T", v)
	}
}

// Rebuild returns an unfrozen structural twin of a container whose children
// are produced by fn. Keys passed to fn are string for objects and int for
// arrays. Primitives are returned unchanged and blobs are copied; fn is not
// called for them.
//
// Rebuild performs no cycle check. It is meant for values already admitted
// through Clone.
func Rebuild(v Value, fn func(key any, child Value) Value) Value {
	switch val := v.(type) {
	case *Object:
		twin := &Object{
			keys:   make([]string, 0, len(val.keys)),
			fields: make(map[string]Value, len(val.keys)),
		}
		for _, k := range val.keys {
			twin.keys = append(twin.keys, k)
			twin.fields[k] = fn(k, val.fields[k])
		}
		return twin
	case *Array:
		twin := &Array{items: make([]Value, len(val.items))}
		for i, item := range val.items {
			twin.items[i] = fn(i, item)
		}
		return twin
	case *Blob:
		return val.twin()
	default:
		return v
	}
}
