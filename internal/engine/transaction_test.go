package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/value"
)

func TestTransaction_DeliversOneEventInCallOrder(t *testing.T) {
	c, rec := newTestContainer(t, counter())
	count := c.MustPath("count")

	require.NoError(t, c.Transaction(func() error {
		if _, err := c.Get(count); err != nil {
			return err
		}
		if err := c.Set(count, value.Number(1)); err != nil {
			return err
		}
		if err := c.Update(count, func(v value.Value) (value.Value, error) {
			return v.(value.Number) * 10, nil
		}); err != nil {
			return err
		}
		return c.Set(c.MustPath("flag"), value.Bool(true))
	}))

	require.Equal(t, []event.Kind{event.KindInit, event.KindTransaction}, rec.kinds())
	tx := rec.events[1]
	assert.Equal(t, "tx-1", tx.TransactionID())

	var kinds []event.Kind
	for _, ev := range tx.Events() {
		kinds = append(kinds, ev.Kind())
		assert.Less(t, ev.Seq(), tx.Seq())
	}
	assert.Equal(t, []event.Kind{event.KindGet, event.KindSet, event.KindUpdate, event.KindSet}, kinds)

	update := tx.Events()[2]
	assert.Equal(t, value.Number(1), update.Previous(), "deferred writes apply in call order")
	assert.Equal(t, value.Number(10), update.Value())

	got, err := c.Get(count)
	require.NoError(t, err)
	assert.Equal(t, value.Number(10), got)
}

func TestTransaction_ReadsSeePreTransactionState(t *testing.T) {
	c, _ := newTestContainer(t, counter())
	count := c.MustPath("count")

	var inside value.Value
	require.NoError(t, c.Transaction(func() error {
		if err := c.Set(count, value.Number(7)); err != nil {
			return err
		}
		var err error
		inside, err = c.Get(count)
		return err
	}))

	assert.Equal(t, value.Number(0), inside)
	got, err := c.Get(count)
	require.NoError(t, err)
	assert.Equal(t, value.Number(7), got)
}

func TestTransaction_ClonesInputsAtCallTime(t *testing.T) {
	c, _ := newTestContainer(t, counter())
	x := value.ObjectOf(value.P("n", value.Number(1)))

	require.NoError(t, c.Transaction(func() error {
		if err := c.Set(c.MustPath("x"), x); err != nil {
			return err
		}
		return x.Set("n", value.Number(2))
	}))

	got, err := c.Get(c.MustPath("x", "n"))
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), got)
}

func TestTransaction_Empty(t *testing.T) {
	c, rec := newTestContainer(t, counter())

	require.NoError(t, c.Transaction(func() error { return nil }))

	require.Equal(t, []event.Kind{event.KindInit, event.KindTransaction}, rec.kinds())
	assert.Equal(t, 0, rec.events[1].Len())
}

func TestTransaction_BodyErrorDiscardsQueue(t *testing.T) {
	c, rec := newTestContainer(t, counter())
	count := c.MustPath("count")
	boom := errors.New("boom")

	err := c.Transaction(func() error {
		if err := c.Set(count, value.Number(1)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, rec.events)
	assert.True(t, c.CanMutateSubscriptions())

	got, err := c.Get(count)
	require.NoError(t, err)
	assert.Equal(t, value.Number(0), got)
	assert.Equal(t, []event.Kind{event.KindInit, event.KindGet}, rec.kinds())
}

func TestTransaction_FailedWriteRollsBack(t *testing.T) {
	initial := value.ObjectOf(
		value.P("a", value.Number(1)),
		value.P("list", value.NewArray(value.String("x"), value.String("y"))),
		value.P("obj", value.ObjectOf(value.P("k1", value.Number(1)), value.P("k2", value.Number(2)))),
	)
	c, rec := newTestContainer(t, initial)
	before, err := c.Get(c.MustPath())
	require.NoError(t, err)

	err = c.Transaction(func() error {
		ops := []func() error{
			func() error { return c.Set(c.MustPath("a"), value.Number(2)) },
			func() error { return c.Set(c.MustPath("b"), value.Number(3)) },
			func() error { return c.Remove(c.MustPath("list", 0)) },
			func() error { return c.Remove(c.MustPath("obj", "k1")) },
			func() error { return c.Set(c.MustPath("list", 1), value.String("z")) },
			func() error {
				return c.Update(c.MustPath("a"), func(v value.Value) (value.Value, error) {
					return v.(value.Number) + 1, nil
				})
			},
			func() error { return c.Remove(c.MustPath("missing")) },
		}
		for _, op := range ops {
			if err := op(); err != nil {
				return err
			}
		}
		return nil
	})
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.Equal(t, []event.Kind{event.KindInit, event.KindGet}, rec.kinds(), "nothing emitted")

	after, err := c.Get(c.MustPath())
	require.NoError(t, err)
	assert.True(t, value.Equal(before, after))
	assert.Equal(t, []string{"a", "list", "obj"}, after.(*value.Object).Keys())

	obj, _ := after.(*value.Object).Get("obj")
	assert.Equal(t, []string{"k1", "k2"}, obj.(*value.Object).Keys(), "key order restored")
}

func TestTransaction_RootReplaceRollsBack(t *testing.T) {
	c, _ := newTestContainer(t, counter())

	err := c.Transaction(func() error {
		if err := c.Set(c.MustPath(), value.NewArray()); err != nil {
			return err
		}
		return c.Set(c.MustPath("count"), value.Number(1))
	})
	assert.ErrorIs(t, err, ErrPathNotFound, "arrays are not keyed by name")

	got, err := c.Get(c.MustPath())
	require.NoError(t, err)
	assert.True(t, value.Equal(counter(), got))
}

func TestTransaction_Reentrancy(t *testing.T) {
	c, _ := newTestContainer(t, counter())

	var nested, sub, unsub error
	var canMutate bool
	unsubscribe, err := c.Subscribe(func(event.Event) {})
	require.NoError(t, err)

	require.NoError(t, c.Transaction(func() error {
		nested = c.Transaction(func() error { return nil })
		_, sub = c.Subscribe(func(event.Event) {})
		unsub = unsubscribe()
		canMutate = c.CanMutateSubscriptions()
		return nil
	}))

	assert.ErrorIs(t, nested, ErrConcurrentTransactionForbidden)
	assert.ErrorIs(t, sub, ErrSubscriptionMutationForbidden)
	assert.ErrorIs(t, unsub, ErrSubscriptionMutationForbidden)
	assert.False(t, canMutate)
	assert.True(t, c.CanMutateSubscriptions())
}

func TestTransaction_UpdaterInsideTransactionIsGuarded(t *testing.T) {
	c, _ := newTestContainer(t, counter())
	count := c.MustPath("count")

	var nestedSet, nestedTx error
	require.NoError(t, c.Transaction(func() error {
		return c.Update(count, func(v value.Value) (value.Value, error) {
			nestedSet = c.Set(count, value.Number(99))
			nestedTx = c.Transaction(func() error { return nil })
			return v.(value.Number) + 1, nil
		})
	}))

	assert.ErrorIs(t, nestedSet, ErrNestedWriteForbidden)
	assert.ErrorIs(t, nestedTx, ErrTransactionDuringUpdateForbidden)
	got, err := c.Get(count)
	require.NoError(t, err)
	assert.Equal(t, value.Number(1), got)
}

func TestTransaction_PanicInBodyReleasesGuard(t *testing.T) {
	c, _ := newTestContainer(t, counter())

	assert.Panics(t, func() {
		_ = c.Transaction(func() error { panic("body exploded") })
	})
	assert.True(t, c.CanMutateSubscriptions())
	assert.NoError(t, c.Transaction(func() error { return nil }))
}

func TestTransaction_Meta(t *testing.T) {
	c, rec := newTestContainer(t, counter())

	require.NoError(t, c.Transaction(func() error {
		_, err := c.Get(c.MustPath("count"), WithMeta(value.String("child")))
		return err
	}, WithMeta(value.String("batch"))))

	tx := rec.events[1]
	assert.Equal(t, value.String("batch"), tx.Meta())
	assert.Equal(t, value.String("child"), tx.Events()[0].Meta())
}

func TestTransaction_SubsequentTransactionsGetFreshIDs(t *testing.T) {
	c, rec := newTestContainer(t, counter())

	require.NoError(t, c.Transaction(func() error { return nil }))
	require.NoError(t, c.Transaction(func() error { return nil }))

	assert.Equal(t, "tx-1", rec.events[1].TransactionID())
	assert.Equal(t, "tx-2", rec.events[2].TransactionID())
}
