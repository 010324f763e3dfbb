package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/lineage"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/value"
)

func sample() *value.Object {
	return value.ObjectOf(
		value.P("a", value.ObjectOf(value.P("n", value.Number(1)))),
		value.P("b", value.NewArray(value.String("x"))),
		value.P("c", value.Number(3)),
	)
}

func TestClone_ReturnsFrozenEqualCopy(t *testing.T) {
	f := path.NewFactory()
	c := New()
	state := sample()

	got := c.Clone(f.Root(), state)
	assert.True(t, value.Equal(state, got))
	assert.NotSame(t, state, got)
	assert.True(t, value.IsFrozen(got))
	assert.False(t, state.Frozen(), "source must stay mutable")
}

func TestClone_MemoizesSameObject(t *testing.T) {
	f := path.NewFactory()
	c := New()
	state := sample()

	first := c.Clone(f.Root(), state)
	second := c.Clone(f.Root(), state)
	assert.Same(t, first, second)
}

func TestClone_ReusesCachedChildren(t *testing.T) {
	f := path.NewFactory()
	c := New()
	state := sample()
	a, _ := state.Get("a")

	child := c.Clone(f.Must("a"), a)
	root := c.Clone(f.Root(), state)

	rootA, ok := root.(*value.Object).Get("a")
	require.True(t, ok)
	assert.Same(t, child, rootA)
}

func TestClone_PrimitivesNotCached(t *testing.T) {
	f := path.NewFactory()
	c := New()

	assert.Equal(t, value.Number(3), c.Clone(f.Must("c"), value.Number(3)))
	assert.Equal(t, 0, c.Len())
}

func TestReconcile_EvictsLineageOnly(t *testing.T) {
	f := path.NewFactory()
	c := New()
	state := sample()

	c.Clone(f.Root(), state)
	require.True(t, c.Has(f.Must("a")))
	require.True(t, c.Has(f.Must("b")))

	a, _ := state.Get("a")
	c.Reconcile(lineage.Compute(f.Must("a", "n"), value.Number(1)))

	assert.False(t, c.Has(f.Root()))
	assert.False(t, c.Has(f.Must("a")))
	assert.True(t, c.Has(f.Must("b")), "sibling subtree stays cached")

	// Rebuilt root reuses the untouched sibling clone.
	bBefore := c.Clone(f.Must("b"), mustGet(state, "b"))
	require.NoError(t, a.(*value.Object).Set("n", value.Number(2)))
	root := c.Clone(f.Root(), state)
	bAfter, _ := root.(*value.Object).Get("b")
	assert.Same(t, bBefore, bAfter)
	n, _ := mustGet(root.(*value.Object), "a").(*value.Object).Get("n")
	assert.Equal(t, value.Number(2), n)
}

func TestReset(t *testing.T) {
	f := path.NewFactory()
	c := New()
	c.Clone(f.Root(), sample())
	require.NotZero(t, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func mustGet(o *value.Object, key string) value.Value {
	v, ok := o.Get(key)
	if !ok {
		panic("missing key " + key)
	}
	return v
}
