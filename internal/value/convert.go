package value

import (
	"encoding"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"reflect"
	"sort"
	"strings"
)

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	valueType         = reflect.TypeOf((*Value)(nil)).Elem()
)

// From converts a host Go value into a fresh, unfrozen Value.
//
// Admission rules:
//   - Sealed values are cloned (see Clone).
//   - bool, string, every integer and float kind become Bool, String, Number.
//     *big.Int becomes BigInt. []byte becomes a Blob of type
//     application/octet-stream.
//   - Maps with string keys become Objects with keys sorted, since Go maps
//     carry no order. In map[any]any, entries whose key is not a string are
//     dropped with a warning.
//   - Slices and arrays become Arrays.
//   - Structs become Objects, fields in declaration order, named by their
//     json tag when present. Fields tagged json:"-" are skipped.
//   - Pointers are followed.
//
// Rejections:
//   - nil, funcs, chans, complex numbers, maps with non-string keys:
//     ErrUncloneable.
//   - The same map, slice backing array or pointer reached twice:
//     ErrReferenceCycle.
//   - Types implementing json.Marshaler or encoding.TextMarshaler:
//     ErrGetterSetterForbidden.
//   - Structs with unexported fields: ErrInvalidDescriptor.
//   - Structs with embedded fields: ErrInvalidShape.
//   - Distinct keys or field names sharing an NFC form: ErrAmbiguousKey.
func From(x any) (Value, error) {
	return FromWithLogger(x, slog.Default())
}

// FromWithLogger is From with an explicit logger for non-fatal diagnostics.
func FromWithLogger(x any, logger *slog.Logger) (Value, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &converter{
		cloner: cloner{visited: make(map[any]struct{})},
		logger: logger,
	}
	return c.convert(reflect.ValueOf(x), nil)
}

// MustFrom is like From but panics on error.
func MustFrom(x any) Value {
	v, err := From(x)
	if err != nil {
		panic(err)
	}
	return v
}

type converter struct {
	cloner
	logger *slog.Logger
}

type refKey struct {
	ptr uintptr
	typ reflect.Type
}

func (c *converter) convert(rv reflect.Value, loc *location) (Value, error) {
	if !rv.IsValid() {
		return nil, newCloneError(ErrCodeUncloneable, loc, "nil value")
	}

	// Interface-wrapped values: unwrap first so the checks below see the
	// dynamic type.
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil value")
		}
		return c.convert(rv.Elem(), loc)
	}

	if rv.Type().Implements(valueType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil %s", rv.Type())
		}
		return c.clone(rv.Interface().(Value), loc)
	}

	if bi, ok := rv.Interface().(*big.Int); ok {
		if bi == nil {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil *big.Int")
		}
		return NewBigInt(bi), nil
	}
	if bi, ok := rv.Interface().(big.Int); ok {
		return NewBigInt(&bi), nil
	}

	if rv.Type().Implements(jsonMarshalerType) || rv.Type().Implements(textMarshalerType) {
		return nil, newCloneError(ErrCodeGetterSetterForbidden, loc,
			"%s computes its own representation", rv.Type())
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil

	case reflect.Pointer:
		if rv.IsNil() {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil %s", rv.Type())
		}
		if err := c.visit(refKey{rv.Pointer(), rv.Type()}, loc); err != nil {
			return nil, err
		}
		return c.convert(rv.Elem(), loc)

	case reflect.Slice:
		if rv.IsNil() {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil %s", rv.Type())
		}
		if rv.Len() > 0 {
			if err := c.visit(refKey{rv.Pointer(), rv.Type()}, loc); err != nil {
				return nil, err
			}
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return NewBlob(rv.Bytes(), "application/octet-stream"), nil
		}
		return c.convertSeq(rv, loc)

	case reflect.Array:
		return c.convertSeq(rv, loc)

	case reflect.Map:
		if rv.IsNil() {
			return nil, newCloneError(ErrCodeUncloneable, loc, "nil %s", rv.Type())
		}
		if err := c.visit(refKey{rv.Pointer(), rv.Type()}, loc); err != nil {
			return nil, err
		}
		return c.convertMap(rv, loc)

	case reflect.Struct:
		return c.convertStruct(rv, loc)
	}

	return nil, newCloneError(ErrCodeUncloneable, loc, "unsupported type %s", rv.Type())
}

func (c *converter) convertSeq(rv reflect.Value, loc *location) (Value, error) {
	arr := &Array{items: make([]Value, rv.Len())}
	for i := 0; i < rv.Len(); i++ {
		item, err := c.convert(rv.Index(i), loc.elem(i))
		if err != nil {
			return nil, err
		}
		arr.items[i] = item
	}
	return arr, nil
}

func (c *converter) convertMap(rv reflect.Value, loc *location) (Value, error) {
	keyKind := rv.Type().Key().Kind()
	if keyKind != reflect.String && keyKind != reflect.Interface {
		return nil, newCloneError(ErrCodeUncloneable, loc,
			"map keys must be strings, got %s", rv.Type().Key())
	}

	entries := make(map[string]reflect.Value, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if keyKind == reflect.Interface {
			if k.IsNil() || k.Elem().Kind() != reflect.String {
				c.logger.Warn("dropping non-string map key",
					"location", loc.String(),
					"key", fmt.Sprintf("%v", k.Interface()))
				continue
			}
			k = k.Elem()
		}
		entries[k.String()] = iter.Value()
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := &Object{fields: make(map[string]Value, len(keys))}
	guard := newKeyGuard(len(keys))
	for _, k := range keys {
		if err := guard.admit(k, loc.field(k)); err != nil {
			return nil, err
		}
		child, err := c.convert(entries[k], loc.field(k))
		if err != nil {
			return nil, err
		}
		obj.put(k, child)
	}
	return obj, nil
}

func (c *converter) convertStruct(rv reflect.Value, loc *location) (Value, error) {
	t := rv.Type()
	obj := &Object{fields: make(map[string]Value, t.NumField())}
	guard := newKeyGuard(t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			return nil, newCloneError(ErrCodeInvalidShape, loc,
				"%s embeds %s", t, f.Type)
		}
		if !f.IsExported() {
			return nil, newCloneError(ErrCodeInvalidDescriptor, loc,
				"%s has unexported field %s", t, f.Name)
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if err := guard.admit(name, loc.field(name)); err != nil {
			return nil, err
		}
		child, err := c.convert(rv.Field(i), loc.field(name))
		if err != nil {
			return nil, err
		}
		obj.put(name, child)
	}
	return obj, nil
}
