package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/engine"
	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/value"
)

func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func newJournaledContainer(t *testing.T, j *Journal, id string, initial value.Value) *engine.Container {
	t.Helper()
	c, err := engine.New(initial,
		engine.WithID(id),
		engine.WithIDGenerator(engine.NewFixedGenerator("tx-1", "tx-2")),
	)
	require.NoError(t, err)
	_, err = c.Subscribe(j.Subscriber(context.Background(), nil))
	require.NoError(t, err)
	return c
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	j := createTestJournal(t)

	assert.NoError(t, j.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, j.verifyPragma("synchronous", "1"))
	assert.NoError(t, j.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, j.verifyPragma("user_version", "1"))
}

func TestOpen_MigratesOlderJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.db.Exec("DROP INDEX idx_events_transaction")
	require.NoError(t, err)
	_, err = j.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	assert.NoError(t, j.verifyPragma("user_version", "1"))
	var name string
	err = j.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_events_transaction'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_events_transaction", name)
}

func TestSubscriber_RecordsEventStream(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	c := newJournaledContainer(t, j, "c-1", value.ObjectOf(value.P("count", value.Number(0))))
	count := c.MustPath("count")

	require.NoError(t, c.Set(count, value.Number(5)))
	_, err := c.Get(count, engine.WithMeta(value.String("read")))
	require.NoError(t, err)
	require.NoError(t, c.Remove(count))

	records, err := j.Read(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, records, 4)

	kinds := []event.Kind{records[0].Kind, records[1].Kind, records[2].Kind, records[3].Kind}
	assert.Equal(t, []event.Kind{event.KindInit, event.KindSet, event.KindGet, event.KindRemove}, kinds)

	set := records[1]
	assert.Equal(t, `["count"]`, set.Path)
	assert.Equal(t, value.Number(5), set.Value)
	assert.True(t, set.HadPrevious)
	assert.Equal(t, value.Number(0), set.Previous)

	assert.Equal(t, value.String("read"), records[2].Meta)
	assert.Nil(t, records[3].Value)
	assert.Equal(t, "", records[0].Path)

	for i := 1; i < len(records); i++ {
		assert.Less(t, records[i-1].Seq, records[i].Seq)
	}
}

func TestAppend_TransactionFlattened(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	c := newJournaledContainer(t, j, "c-1", value.ObjectOf(value.P("a", value.Number(1))))

	require.NoError(t, c.Transaction(func() error {
		if err := c.Set(c.MustPath("a"), value.Number(2)); err != nil {
			return err
		}
		return c.Set(c.MustPath("b"), value.Number(3))
	}))

	records, err := j.Read(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, event.KindInit, records[0].Kind)
	assert.Equal(t, "", records[0].TransactionID)
	for _, rec := range records[1:] {
		assert.Equal(t, "tx-1", rec.TransactionID)
	}
	assert.Equal(t, event.KindTransaction, records[3].Kind)
	assert.False(t, records[2].HadPrevious)
	assert.Nil(t, records[2].Previous)
}

func TestAppend_Idempotent(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)

	c, err := engine.New(value.NewObject(), engine.WithID("c-1"))
	require.NoError(t, err)
	var delivered []event.Event
	_, err = c.Subscribe(func(ev event.Event) { delivered = append(delivered, ev) })
	require.NoError(t, err)
	_, err = c.Get(c.MustPath())
	require.NoError(t, err)

	for _, ev := range delivered {
		require.NoError(t, j.Append(ctx, ev))
		require.NoError(t, j.Append(ctx, ev))
	}

	records, err := j.Read(ctx, "c-1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestContainersAndLastSeq(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)

	first := newJournaledContainer(t, j, "first", value.NewObject())
	second := newJournaledContainer(t, j, "second", value.NewObject())
	_, err := second.Get(second.MustPath())
	require.NoError(t, err)
	_, err = first.Get(first.MustPath())
	require.NoError(t, err)
	_, err = first.Get(first.MustPath())
	require.NoError(t, err)

	ids, err := j.Containers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, ids)

	seq, err := j.LastSeq(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)

	seq, err = j.LastSeq(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	records, err := j.Read(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestReplay_RebuildsState(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	c := newJournaledContainer(t, j, "c-1", value.ObjectOf(
		value.P("list", value.NewArray(value.String("x"), value.String("y"))),
		value.P("big", value.BigIntFromInt64(1)),
	))

	require.NoError(t, c.Remove(c.MustPath("list", 0)))
	require.NoError(t, c.Update(c.MustPath("list"), func(v value.Value) (value.Value, error) {
		return nil, v.(*value.Array).Append(value.String("z"))
	}))
	require.NoError(t, c.Transaction(func() error {
		if err := c.Set(c.MustPath("blob"), value.NewBlob([]byte{1, 2}, "application/octet-stream")); err != nil {
			return err
		}
		return c.Set(c.MustPath("flag"), value.Bool(true))
	}))

	replayed, err := j.Replay(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, value.Equal(c.Snapshot(), replayed))
	assert.Equal(t, []string{"list", "big", "blob", "flag"}, replayed.(*value.Object).Keys())
}

func TestReplay_NoInit(t *testing.T) {
	j := createTestJournal(t)
	_, err := j.Replay(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoInit)
}
