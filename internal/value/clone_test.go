package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_PrimitivesPassThrough(t *testing.T) {
	for _, v := range []Value{Null{}, String("s"), Number(1.5), Bool(true), BigIntFromInt64(9)} {
		got, err := Clone(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestClone_DeepCopyWithoutSharedReferences(t *testing.T) {
	inner := ObjectOf(P("n", Number(1)))
	list := NewArray(inner, String("x"))
	blob := NewBlob([]byte("abc"), "text/plain")
	src := ObjectOf(P("list", list), P("blob", blob))

	got, err := Clone(src)
	require.NoError(t, err)
	assert.True(t, Equal(src, got))

	out := got.(*Object)
	assert.NotSame(t, src, out)
	outList, _ := out.Get("list")
	assert.NotSame(t, list, outList)
	outInner, _ := outList.(*Array).At(0)
	assert.NotSame(t, inner, outInner)
	outBlob, _ := out.Get("blob")
	assert.NotSame(t, blob, outBlob)

	// Mutating the source afterwards does not leak into the clone.
	require.NoError(t, inner.Set("n", Number(2)))
	n, _ := outInner.(*Object).Get("n")
	assert.Equal(t, Number(1), n)
}

func TestClone_UnfreezesCopy(t *testing.T) {
	src := Freeze(ObjectOf(P("a", NewArray()))).(*Object)
	got, err := Clone(src)
	require.NoError(t, err)
	assert.False(t, got.(*Object).Frozen())
}

func TestClone_SelfReference(t *testing.T) {
	obj := NewObject()
	require.NoError(t, obj.Set("self", obj))

	_, err := Clone(obj)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferenceCycle)
	assert.Contains(t, err.Error(), "must be reference agnostic")
	assert.Contains(t, err.Error(), "$.self")
}

func TestClone_SharedSubobjectAliasing(t *testing.T) {
	shared := NewArray(Number(1))
	obj := ObjectOf(P("a", shared), P("b", shared))

	_, err := Clone(obj)
	assert.ErrorIs(t, err, ErrReferenceCycle)

	blob := NewBlob(nil, "x/y")
	_, err = Clone(NewArray(blob, blob))
	assert.ErrorIs(t, err, ErrReferenceCycle)
}

func TestClone_NilRejected(t *testing.T) {
	_, err := Clone(nil)
	assert.ErrorIs(t, err, ErrUncloneable)

	_, err = Clone(NewArray(Number(1), nil))
	assert.ErrorIs(t, err, ErrUncloneable)

	_, err = Clone((*Object)(nil))
	assert.ErrorIs(t, err, ErrUncloneable)
}

func TestCloneError_IsMatchesByCode(t *testing.T) {
	err := &CloneError{Code: ErrCodeInvalidShape, Location: "$.a", Message: "x"}
	assert.ErrorIs(t, err, ErrInvalidShape)
	assert.NotErrorIs(t, err, ErrInvalidDescriptor)
	assert.Equal(t, "INVALID_SHAPE: x (at $.a)", err.Error())
}

func TestRebuild(t *testing.T) {
	src := ObjectOf(P("a", Number(1)), P("b", NewArray(Number(2))))
	var keys []any
	twin := Rebuild(src, func(key any, child Value) Value {
		keys = append(keys, key)
		return child
	})

	assert.Equal(t, []any{"a", "b"}, keys)
	assert.True(t, Equal(src, twin))
	assert.NotSame(t, src, twin)

	arrKeys := []any{}
	Rebuild(NewArray(Null{}, Null{}), func(key any, child Value) Value {
		arrKeys = append(arrKeys, key)
		return child
	})
	assert.Equal(t, []any{0, 1}, arrKeys)

	assert.Equal(t, String("s"), Rebuild(String("s"), nil))
}
