package value

// Freeze write-locks every container reachable from v, in place, and returns v.
// Already-frozen containers are returned without descending, which keeps the
// cost bounded when frozen subtrees are shared between parents.
func Freeze(v Value) Value {
	switch val := v.(type) {
	case *Object:
		if val == nil || val.frozen {
			return v
		}
		val.frozen = true
		for _, child := range val.fields {
			Freeze(child)
		}
	case *Array:
		if val == nil || val.frozen {
			return v
		}
		val.frozen = true
		for _, child := range val.items {
			Freeze(child)
		}
	}
	return v
}

// IsFrozen reports whether v is immutable. Primitives and blobs always are.
func IsFrozen(v Value) bool {
	switch val := v.(type) {
	case *Object:
		return val.frozen
	case *Array:
		return val.frozen
	}
	return true
}
