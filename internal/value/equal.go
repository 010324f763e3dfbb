package value

import "math"

// Equal reports deep structural equality. Object key order is ignored;
// array order is not. Two NaN numbers are equal.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false
		}
		if math.IsNaN(float64(x)) && math.IsNaN(float64(y)) {
			return true
		}
		return x == y
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case BigInt:
		y, ok := b.(BigInt)
		return ok && x.Int().Cmp(y.Int()) == 0
	case *Object:
		y, ok := b.(*Object)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, k := range x.keys {
			yv, ok := y.fields[k]
			if !ok || !Equal(x.fields[k], yv) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	case *Blob:
		y, ok := b.(*Blob)
		if !ok {
			return false
		}
		return x.mimeType == y.mimeType && x.name == y.name &&
			x.lastModified == y.lastModified && x.file == y.file &&
			string(x.data) == string(y.data)
	}
	return false
}
