package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/journal"
	"github.com/roach88/statetree/internal/value"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal   string
	Container string // optional - specific container only
}

// ReplayContainerResult holds the replay result for a single container.
type ReplayContainerResult struct {
	Container     string          `json:"container"`
	Events        int             `json:"events"`
	LastSeq       int64           `json:"last_seq"`
	Deterministic bool            `json:"deterministic"`
	State         json.RawMessage `json:"state,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Containers       []ReplayContainerResult `json:"containers"`
	TotalContainers  int                     `json:"total_containers"`
	AllDeterministic bool                    `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild container state from a journal",
		Long: `Rebuild each container's final state by replaying its journaled writes.

Every container is replayed twice and the two states are compared to
verify that the journal determines the state.

Exit codes:
  0 - All containers replay deterministically
  1 - A replay failed or two replays disagreed
  2 - Command error (journal not found, etc.)

Examples:
  statetree replay --journal ./events.db
  statetree replay --journal ./events.db --container counter-1
  statetree replay --journal ./events.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.Container, "container", "", "replay specific container only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	var ids []string
	if opts.Container != "" {
		ids = []string{opts.Container}
	} else if ids, err = j.Containers(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to list containers", err)
	}

	result := ReplayResult{
		Containers:       make([]ReplayContainerResult, 0, len(ids)),
		TotalContainers:  len(ids),
		AllDeterministic: true,
	}
	for _, id := range ids {
		cr := replayContainer(ctx, j, id)
		if !cr.Deterministic {
			result.AllDeterministic = false
		}
		result.Containers = append(result.Containers, cr)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		response := CLIResponse{Status: "ok", Data: result}
		if !result.AllDeterministic {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    ErrCodeNonDeterminism,
				Message: "replay verification failed",
			}
		}
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay verification failed")
	}
	return nil
}

func replayContainer(ctx context.Context, j *journal.Journal, id string) ReplayContainerResult {
	cr := ReplayContainerResult{Container: id}

	records, err := j.Read(ctx, id)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}
	cr.Events = len(records)
	if cr.LastSeq, err = j.LastSeq(ctx, id); err != nil {
		cr.Error = err.Error()
		return cr
	}

	first, err := j.Replay(ctx, id)
	if err != nil {
		if errors.Is(err, journal.ErrNoInit) {
			cr.Error = "no init event journaled"
		} else {
			cr.Error = err.Error()
		}
		return cr
	}
	second, err := j.Replay(ctx, id)
	if err != nil {
		cr.Error = err.Error()
		return cr
	}
	cr.Deterministic = value.Equal(first, second)

	if data, err := value.Marshal(first); err == nil {
		cr.State = json.RawMessage(data)
	}
	return cr
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()

	if result.TotalContainers == 0 {
		fmt.Fprintln(w, "No containers found in journal.")
		return
	}

	for _, cr := range result.Containers {
		if cr.Deterministic {
			fmt.Fprintf(w, "✓ %s (%d events, last seq %d)\n", cr.Container, cr.Events, cr.LastSeq)
			fmt.Fprintf(w, "  state: %s\n", cr.State)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", cr.Container)
		if cr.Error != "" {
			fmt.Fprintf(w, "  %s\n", cr.Error)
		} else {
			fmt.Fprintln(w, "  replays disagree")
		}
	}

	fmt.Fprintln(w)
	if result.AllDeterministic {
		fmt.Fprintf(w, "All %d container(s) replay deterministically\n", result.TotalContainers)
	} else {
		fmt.Fprintln(w, "Replay verification failed")
	}
}
