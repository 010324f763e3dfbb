package statetree_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree"
)

func TestContainerThroughPublicAPI(t *testing.T) {
	c, err := statetree.New(statetree.ObjectOf(
		statetree.P("count", statetree.Number(0)),
		statetree.P("tags", statetree.NewArray(statetree.String("a"))),
	), statetree.WithID("public"))
	require.NoError(t, err)
	assert.Equal(t, "public", c.ID())

	var kinds []statetree.Kind
	unsubscribe, err := c.Subscribe(func(ev statetree.Event) {
		for _, child := range statetree.Flatten(ev) {
			kinds = append(kinds, child.Kind())
		}
	})
	require.NoError(t, err)

	count := c.MustPath("count")
	require.NoError(t, c.Update(count, func(v statetree.Value) (statetree.Value, error) {
		return v.(statetree.Number) + 1, nil
	}))
	require.NoError(t, c.Transaction(func() error {
		return c.Set(c.MustPath("tags", 1), statetree.String("b"), statetree.WithMeta(statetree.String("tagger")))
	}))

	got, err := c.Get(c.MustPath("tags"))
	require.NoError(t, err)
	assert.True(t, statetree.Equal(statetree.NewArray(statetree.String("a"), statetree.String("b")), got))
	assert.True(t, statetree.IsSequence(got))

	require.NoError(t, unsubscribe())
	assert.Equal(t, []statetree.Kind{
		statetree.KindInit, statetree.KindUpdate, statetree.KindSet, statetree.KindGet,
	}, kinds)
}

func TestErrorHelpers(t *testing.T) {
	c, err := statetree.New(statetree.NewObject())
	require.NoError(t, err)

	_, err = c.Get(c.MustPath("missing"))
	assert.True(t, statetree.IsPathNotFound(err))
	assert.ErrorIs(t, err, statetree.ErrPathNotFound)
	code, ok := statetree.Code(err)
	require.True(t, ok)
	assert.Equal(t, statetree.ErrCodePathNotFound, code)

	var se *statetree.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, `["missing"]`, se.Path)

	err = c.Remove(c.MustPath())
	assert.ErrorIs(t, err, statetree.ErrCannotRemoveRoot)
	assert.False(t, statetree.IsReentrancyError(err))

	_, ok = statetree.Code(errors.New("plain"))
	assert.False(t, ok)
}

func TestFromAndLineage(t *testing.T) {
	v, err := statetree.From(map[string]any{
		"big":  big.NewInt(7),
		"list": []any{1, "two"},
	})
	require.NoError(t, err)

	c, err := statetree.New(v)
	require.NoError(t, err)

	list := c.MustPath("list")
	got, err := c.Get(list)
	require.NoError(t, err)

	var lineage []string
	for _, p := range statetree.ComputeLineage(list, got) {
		lineage = append(lineage, p.String())
	}
	assert.Equal(t, []string{`[]`, `["list"]`, `["list",0]`, `["list",1]`}, lineage)

	shared := map[string]any{"x": 1}
	_, err = statetree.From(map[string]any{"a": shared, "b": shared})
	assert.ErrorIs(t, err, statetree.ErrReferenceCycle)

	_, err = statetree.From(map[string]any{"e\u0301": 1, "\u00e9": 2})
	assert.ErrorIs(t, err, statetree.ErrAmbiguousKey)
}
