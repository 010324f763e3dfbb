package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/journal"
	"github.com/roach88/statetree/internal/value"
)

func TestBuildTrace(t *testing.T) {
	records := []journal.Record{
		{Seq: 1, Kind: event.KindInit, Value: value.ObjectOf(value.P("n", value.Number(0)))},
		{Seq: 2, Kind: event.KindSet, Path: `["n"]`, Previous: value.Number(0), HadPrevious: true, Value: value.Number(1), TransactionID: "t"},
		{Seq: 3, Kind: event.KindGet, Path: `["n"]`, Value: value.Number(1), TransactionID: "t"},
		{Seq: 4, Kind: event.KindTransaction, TransactionID: "t", Meta: value.String("batch")},
	}

	result, err := buildTrace("c", records, "")
	require.NoError(t, err)
	assert.Len(t, result.Timeline, 4)
	assert.Equal(t, TraceStats{TotalEvents: 4, Reads: 1, Writes: 1, Transactions: 1, LastSeq: 4}, result.Stats)
	assert.JSONEq(t, `0`, string(result.Timeline[1].Previous))
	assert.Nil(t, result.Timeline[2].Previous)
	assert.JSONEq(t, `"batch"`, string(result.Timeline[3].Meta))

	filtered, err := buildTrace("c", records, "set")
	require.NoError(t, err)
	require.Len(t, filtered.Timeline, 1)
	assert.Equal(t, int64(2), filtered.Timeline[0].Seq)
	assert.Equal(t, 4, filtered.Stats.TotalEvents)
}

func TestTraceCommand_UnknownContainerJSON(t *testing.T) {
	db := filepath.Join(t.TempDir(), "events.db")

	buf := &bytes.Buffer{}
	cmd := NewTraceCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--journal", db, "--container", "nobody"})
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "nobody", resp.Data.Container)
	assert.Empty(t, resp.Data.Timeline)
}

func TestTraceCommand_MissingFlags(t *testing.T) {
	cmd := NewTraceCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayCommand_EmptyJournal(t *testing.T) {
	db := filepath.Join(t.TempDir(), "events.db")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--journal", db})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No containers found in journal.")
}

func TestReplayCommand_UnknownContainerFails(t *testing.T) {
	db := filepath.Join(t.TempDir(), "events.db")

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--journal", db, "--container", "ghost"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "no init event journaled")
}
