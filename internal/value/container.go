package value

import "errors"

// ErrFrozen is returned by every mutation on a frozen container.
var ErrFrozen = errors.New("value is frozen")

// ErrIndexOutOfRange is returned when an array index is outside the
// addressable range of the operation.
var ErrIndexOutOfRange = errors.New("array index out of range")

// Object is an insertion-ordered mapping from string keys to values.
// Keys are compared byte-exact. The zero value is not usable; use NewObject.
type Object struct {
	keys   []string
	fields map[string]Value
	frozen bool
}

func (*Object) storeValue() {}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

// Pair is a key-value pair for ordered object construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: ObjectOf(P("count", Number(0)), P("name", String("cart")))
func P(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// ObjectOf creates an object from pairs in order. A repeated key keeps its
// first position and its last value. Canonically equivalent but distinct
// keys are kept apart here and rejected when the object is cloned.
func ObjectOf(pairs ...Pair) *Object {
	obj := &Object{fields: make(map[string]Value, len(pairs))}
	for _, p := range pairs {
		obj.put(p.Key, p.Value)
	}
	return obj
}

// Len returns the number of fields.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

// IndexOf returns the insertion position of key, or -1.
func (o *Object) IndexOf(key string) int {
	for i, k := range o.keys {
		if k == key {
			return i
		}
	}
	return -1
}

// Set stores v under key. Existing keys keep their position.
func (o *Object) Set(key string, v Value) error {
	if o.frozen {
		return ErrFrozen
	}
	o.put(key, v)
	return nil
}

// InsertAt stores v under a key that is not yet present, at position i.
// If the key is present it is replaced in place.
func (o *Object) InsertAt(i int, key string, v Value) error {
	if o.frozen {
		return ErrFrozen
	}
	if _, ok := o.fields[key]; ok {
		o.fields[key] = v
		return nil
	}
	if i < 0 || i > len(o.keys) {
		return ErrIndexOutOfRange
	}
	o.keys = append(o.keys, "")
	copy(o.keys[i+1:], o.keys[i:])
	o.keys[i] = key
	o.fields[key] = v
	return nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (o *Object) Delete(key string) error {
	if o.frozen {
		return ErrFrozen
	}
	if _, ok := o.fields[key]; !ok {
		return nil
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return nil
}

// Range calls fn for each field in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.fields[k]) {
			return
		}
	}
}

// Frozen reports whether the object is write-locked.
func (o *Object) Frozen() bool { return o.frozen }

func (o *Object) put(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.fields[key] = v
}

// Array is an ordered sequence of values.
type Array struct {
	items  []Value
	frozen bool
}

func (*Array) storeValue() {}

// NewArray creates an array holding items.
func NewArray(items ...Value) *Array {
	out := make([]Value, len(items))
	copy(out, items)
	return &Array{items: out}
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at index i.
func (a *Array) At(i int) (Value, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// Items returns the elements in order.
func (a *Array) Items() []Value {
	out := make([]Value, len(a.items))
	copy(out, a.items)
	return out
}

// Append adds elements at the end.
func (a *Array) Append(vs ...Value) error {
	if a.frozen {
		return ErrFrozen
	}
	a.items = append(a.items, vs...)
	return nil
}

// SetIndex replaces the element at i. i == Len appends.
func (a *Array) SetIndex(i int, v Value) error {
	if a.frozen {
		return ErrFrozen
	}
	switch {
	case i >= 0 && i < len(a.items):
		a.items[i] = v
	case i == len(a.items):
		a.items = append(a.items, v)
	default:
		return ErrIndexOutOfRange
	}
	return nil
}

// Insert places v at index i, shifting later elements right.
func (a *Array) Insert(i int, v Value) error {
	if a.frozen {
		return ErrFrozen
	}
	if i < 0 || i > len(a.items) {
		return ErrIndexOutOfRange
	}
	a.items = append(a.items, nil)
	copy(a.items[i+1:], a.items[i:])
	a.items[i] = v
	return nil
}

// RemoveIndex removes the element at i, shifting later elements left.
func (a *Array) RemoveIndex(i int) error {
	if a.frozen {
		return ErrFrozen
	}
	if i < 0 || i >= len(a.items) {
		return ErrIndexOutOfRange
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	return nil
}

// Range calls fn for each element in order until fn returns false.
func (a *Array) Range(fn func(i int, v Value) bool) {
	for i, v := range a.items {
		if !fn(i, v) {
			return
		}
	}
}

// Frozen reports whether the array is write-locked.
func (a *Array) Frozen() bool { return a.frozen }
