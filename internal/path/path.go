// Package path provides interned location paths into a state tree.
//
// A Path is an immutable sequence of keys. String keys address object
// fields, int keys address array elements. The root is the empty path.
//
// Paths are produced by a Factory, which interns them: two requests for the
// same key sequence return the same *Path. This turns "was this path made by
// the sanctioned factory" into an O(1) identity check (FromFactory).
package path

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ErrInvalidPart is returned when a path part is not a string, int or *Path.
var ErrInvalidPart = errors.New("invalid path part")

// Key is one step of a path: an object field name or an array index.
type Key struct {
	name    string
	index   int
	isIndex bool
}

// Field returns a key addressing an object field.
func Field(name string) Key {
	return Key{name: name}
}

// Index returns a key addressing an array element.
func Index(i int) Key {
	return Key{index: i, isIndex: true}
}

// IsIndex reports whether the key addresses an array element.
func (k Key) IsIndex() bool { return k.isIndex }

// Name returns the field name. Empty for index keys.
func (k Key) Name() string { return k.name }

// Index returns the array index. Zero for field keys.
func (k Key) Index() int { return k.index }

// Any returns the key as a string or an int.
func (k Key) Any() any {
	if k.isIndex {
		return k.index
	}
	return k.name
}

// String returns the display form: the name, or the index in decimal.
func (k Key) String() string {
	if k.isIndex {
		return strconv.Itoa(k.index)
	}
	return k.name
}

// Path is an interned, immutable key sequence.
// Only a Factory creates paths; compare them with ==.
type Path struct {
	keys    []Key
	encoded string
	factory *Factory
	parent  *Path
}

// Len returns the number of keys.
func (p *Path) Len() int { return len(p.keys) }

// IsRoot reports whether p is the empty path.
func (p *Path) IsRoot() bool { return len(p.keys) == 0 }

// Keys returns a copy of the keys.
func (p *Path) Keys() []Key {
	out := make([]Key, len(p.keys))
	copy(out, p.keys)
	return out
}

// At returns the i-th key.
func (p *Path) At(i int) Key { return p.keys[i] }

// Last returns the final key. It panics on the root path.
func (p *Path) Last() Key { return p.keys[len(p.keys)-1] }

// Parent returns the path without its final key, or nil for the root.
func (p *Path) Parent() *Path { return p.parent }

// Child returns the interned path extending p by key, which must be a
// string, an int, or a Key.
func (p *Path) Child(key any) *Path {
	return p.factory.Must(p, key)
}

// Factory returns the factory that interned p.
func (p *Path) Factory() *Factory { return p.factory }

// String returns the canonical encoding, a JSON array such as ["a",0].
// This is also the interning key, so it is unambiguous for any key content.
func (p *Path) String() string { return p.encoded }

// MarshalJSON implements json.Marshaler.
func (p *Path) MarshalJSON() ([]byte, error) { return []byte(p.encoded), nil }

// Factory creates and interns paths.
//
// The interning table lives as long as the factory and is never pruned;
// every path it has issued stays valid.
//
// Thread-safety: Factory is safe for concurrent use.
type Factory struct {
	mu       sync.Mutex
	interned map[string]*Path
	root     *Path
}

// NewFactory creates a factory with only the root interned.
func NewFactory() *Factory {
	f := &Factory{interned: make(map[string]*Path)}
	f.root = &Path{encoded: "[]", factory: f}
	f.interned[f.root.encoded] = f.root
	return f
}

// Root returns the empty path.
func (f *Factory) Root() *Path { return f.root }

// New returns the interned path for parts. Each part is a string (field),
// an int (index, must be >= 0), a Key, or a *Path whose keys are spliced in,
// so New(New("a", "b"), "c") == New("a", "b", "c").
func (f *Factory) New(parts ...any) (*Path, error) {
	keys := make([]Key, 0, len(parts))
	for i, part := range parts {
		switch p := part.(type) {
		case string:
			keys = append(keys, Field(p))
		case int:
			if p < 0 {
				return nil, fmt.Errorf("%w: part %d: negative index %d", ErrInvalidPart, i, p)
			}
			keys = append(keys, Index(p))
		case Key:
			if p.isIndex && p.index < 0 {
				return nil, fmt.Errorf("%w: part %d: negative index %d", ErrInvalidPart, i, p.index)
			}
			if !p.isIndex {
				p = Field(p.name)
			}
			keys = append(keys, p)
		case *Path:
			if p == nil {
				return nil, fmt.Errorf("%w: part %d: nil path", ErrInvalidPart, i)
			}
			keys = append(keys, p.keys...)
		default:
			return nil, fmt.Errorf("%w: part %d has type %T", ErrInvalidPart, i, part)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intern(keys), nil
}

// Must is like New but panics on an invalid part.
func (f *Factory) Must(parts ...any) *Path {
	p, err := f.New(parts...)
	if err != nil {
		panic(err)
	}
	return p
}

// FromFactory reports whether p is the canonical instance this factory
// issued for its key sequence. Paths from another factory, or nil, fail.
func (f *Factory) FromFactory(p *Path) bool {
	if p == nil || p.factory != f {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interned[p.encoded] == p
}

// Len returns the number of interned paths, including the root.
func (f *Factory) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.interned)
}

// intern returns the canonical path for keys, creating ancestors as needed.
// Caller must hold f.mu.
func (f *Factory) intern(keys []Key) *Path {
	cur := f.root
	for i := range keys {
		enc := encode(keys[:i+1])
		next, ok := f.interned[enc]
		if !ok {
			own := make([]Key, i+1)
			copy(own, keys[:i+1])
			next = &Path{keys: own, encoded: enc, factory: f, parent: cur}
			f.interned[enc] = next
		}
		cur = next
	}
	return cur
}

// encode renders keys as a JSON array. Field names are JSON strings and
// indexes are JSON numbers, so ["0"] and [0] never collide.
func encode(keys []Key) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		if k.isIndex {
			b.WriteString(strconv.Itoa(k.index))
			continue
		}
		name, _ := json.Marshal(k.name)
		b.Write(name)
	}
	b.WriteByte(']')
	return b.String()
}

// Parse returns the interned path for its canonical encoding, e.g. ["a",0].
// Numbers must be non-negative integers.
func (f *Factory) Parse(encoded string) (*Path, error) {
	dec := json.NewDecoder(strings.NewReader(encoded))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse path %q: %w", encoded, err)
	}
	parts := make([]any, len(raw))
	for i, r := range raw {
		switch v := r.(type) {
		case string:
			parts[i] = v
		case json.Number:
			n, err := strconv.Atoi(v.String())
			if err != nil {
				return nil, fmt.Errorf("parse path %q: %w: index %s", encoded, ErrInvalidPart, v)
			}
			parts[i] = n
		default:
			return nil, fmt.Errorf("parse path %q: %w: %T", encoded, ErrInvalidPart, r)
		}
	}
	return f.New(parts...)
}
