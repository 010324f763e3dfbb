package value

import (
	"math/big"
	"reflect"
)

// Kind classifies a value.
type Kind int

const (
	// KindInvalid is anything that is not storable as-is.
	KindInvalid Kind = iota
	// KindPrimitive covers Null, String, Number, BigInt and Bool.
	KindPrimitive
	// KindObject is a keyed container.
	KindObject
	// KindArray is a sequence container.
	KindArray
	// KindBlob is an opaque binary payload without a name.
	KindBlob
	// KindFile is a named, timestamped binary payload.
	KindFile
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindBlob:
		return "blob"
	case KindFile:
		return "file"
	default:
		return "invalid"
	}
}

// Classify returns the kind of x. Sealed values are classified by their
// variant; host Go values by their reflect kind, the way From would admit
// them. Classification never calls methods on x.
func Classify(x any) Kind {
	switch v := x.(type) {
	case nil:
		return KindInvalid
	case Null, String, Number, Bool, BigInt:
		return KindPrimitive
	case *Object:
		if v == nil {
			return KindInvalid
		}
		return KindObject
	case *Array:
		if v == nil {
			return KindInvalid
		}
		return KindArray
	case *Blob:
		if v == nil {
			return KindInvalid
		}
		if v.file {
			return KindFile
		}
		return KindBlob
	case *big.Int:
		if v == nil {
			return KindInvalid
		}
		return KindPrimitive
	case []byte:
		return KindBlob
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindPrimitive
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String || rv.Type().Key().Kind() == reflect.Interface {
			return KindObject
		}
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Struct:
		return KindObject
	case reflect.Pointer:
		if rv.IsNil() {
			return KindInvalid
		}
		return Classify(rv.Elem().Interface())
	}
	return KindInvalid
}

// IsPrimitive reports whether x is an immutable scalar.
func IsPrimitive(x any) bool { return Classify(x) == KindPrimitive }

// IsKeyedContainer reports whether x is an object-like container.
func IsKeyedContainer(x any) bool { return Classify(x) == KindObject }

// IsSequence reports whether x is an array-like container.
func IsSequence(x any) bool { return Classify(x) == KindArray }

// IsBlob reports whether x is an opaque binary payload, file-like or not.
func IsBlob(x any) bool {
	k := Classify(x)
	return k == KindBlob || k == KindFile
}

// IsFile reports whether x is a file-like binary payload.
func IsFile(x any) bool { return Classify(x) == KindFile }

// IsContainer reports whether v is an *Object or *Array.
func IsContainer(v Value) bool {
	switch v.(type) {
	case *Object, *Array:
		return true
	}
	return false
}
