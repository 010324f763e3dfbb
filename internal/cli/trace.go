package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/journal"
	"github.com/roach88/statetree/internal/value"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal   string
	Container string
	Kind      string // optional - filter to one event kind
}

// TraceEvent is one journaled event in the timeline.
type TraceEvent struct {
	Seq           int64           `json:"seq"`
	Kind          string          `json:"kind"`
	Path          string          `json:"path,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Meta          json.RawMessage `json:"meta,omitempty"`
	Previous      json.RawMessage `json:"previous,omitempty"`
	Value         json.RawMessage `json:"value,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Container string       `json:"container"`
	Timeline  []TraceEvent `json:"timeline"`
	Stats     TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents  int   `json:"total_events"`
	Reads        int   `json:"reads"`
	Writes       int   `json:"writes"`
	Transactions int   `json:"transactions"`
	LastSeq      int64 `json:"last_seq"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled events of a container",
		Long: `Show the event timeline a container recorded in a journal.

Transaction children appear in the order they were applied, followed
by the transaction row that groups them.

Examples:
  statetree trace --journal ./events.db --container counter-1
  statetree trace --journal ./events.db --container counter-1 --kind set
  statetree trace --journal ./events.db --container counter-1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Container, "container", "", "container id to trace (required)")
	_ = cmd.MarkFlagRequired("container")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	records, err := j.Read(ctx, opts.Container)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	if len(records) == 0 {
		if opts.Format == "json" {
			return outputTraceJSON(cmd, TraceResult{
				Container: opts.Container,
				Timeline:  []TraceEvent{},
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No events found for container: %s\n", opts.Container)
		return nil
	}

	result, err := buildTrace(opts.Container, records, opts.Kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to render trace", err)
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result)
}

// buildTrace converts journal rows to the timeline. Stats always cover
// every row; kind only filters the timeline.
func buildTrace(container string, records []journal.Record, kind string) (TraceResult, error) {
	result := TraceResult{
		Container: container,
		Timeline:  make([]TraceEvent, 0, len(records)),
	}

	for _, rec := range records {
		result.Stats.TotalEvents++
		switch rec.Kind {
		case event.KindGet:
			result.Stats.Reads++
		case event.KindSet, event.KindUpdate, event.KindRemove:
			result.Stats.Writes++
		case event.KindTransaction:
			result.Stats.Transactions++
		}
		if rec.Seq > result.Stats.LastSeq {
			result.Stats.LastSeq = rec.Seq
		}

		if kind != "" && string(rec.Kind) != kind {
			continue
		}

		te := TraceEvent{
			Seq:           rec.Seq,
			Kind:          string(rec.Kind),
			Path:          rec.Path,
			TransactionID: rec.TransactionID,
		}
		var err error
		if te.Meta, err = rawValue(rec.Meta); err != nil {
			return result, err
		}
		if rec.HadPrevious {
			if te.Previous, err = rawValue(rec.Previous); err != nil {
				return result, err
			}
		}
		if te.Value, err = rawValue(rec.Value); err != nil {
			return result, err
		}
		result.Timeline = append(result.Timeline, te)
	}

	return result, nil
}

func rawValue(v value.Value) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	data, err := value.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{
		Status: "ok",
		Data:   result,
	})
}

// outputTraceText outputs the trace result as human-readable text.
func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Container: %s\n\n", result.Container)
	fmt.Fprintln(w, "Timeline:")
	for _, ev := range result.Timeline {
		var b strings.Builder
		fmt.Fprintf(&b, "  [%d] %-11s", ev.Seq, ev.Kind)
		if ev.Path != "" {
			fmt.Fprintf(&b, " %s", ev.Path)
		}
		if ev.Previous != nil {
			fmt.Fprintf(&b, " %s ->", ev.Previous)
		}
		if ev.Value != nil {
			fmt.Fprintf(&b, " %s", ev.Value)
		}
		if ev.TransactionID != "" {
			fmt.Fprintf(&b, " (tx %s)", ev.TransactionID)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d events, %d reads, %d writes, %d transactions, last seq %d\n",
		result.Stats.TotalEvents, result.Stats.Reads, result.Stats.Writes,
		result.Stats.Transactions, result.Stats.LastSeq)
	return nil
}
