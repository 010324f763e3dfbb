package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/statetree/internal/harness"
	"github.com/roach88/statetree/internal/journal"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string // optional SQLite journal for the event stream
	Trace   bool   // print the event trace
}

// RunResult is the outcome of one scenario run.
type RunResult struct {
	Scenario    string   `json:"scenario"`
	ContainerID string   `json:"container_id"`
	Pass        bool     `json:"pass"`
	Events      int      `json:"events"`
	Errors      []string `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run one scenario against a fresh container",
		Long: `Run a single YAML scenario against a fresh container.

Steps execute in order, the event trace is recorded, and the scenario's
assertions are evaluated against the trace and the final state.

Exit codes:
  0 - Scenario passed
  1 - Scenario failed
  2 - Command error (unreadable scenario, journal error)

Examples:
  statetree run ./scenarios/counter.yaml
  statetree run ./scenarios/counter.yaml --trace
  statetree run ./scenarios/counter.yaml --journal ./events.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "append the event stream to a SQLite journal")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print the event trace")

	return cmd
}

func runScenarioFile(opts *RunOptions, file string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger(cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	runOpts := []harness.RunOption{harness.WithLogger(logger)}
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				logger.Error("error closing journal", "error", closeErr)
			}
		}()
		runOpts = append(runOpts, harness.WithJournal(j))
	}

	formatter.VerboseLog("running scenario %s (%d steps)", scenario.Name, len(scenario.Steps))
	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	out := RunResult{
		Scenario:    scenario.Name,
		ContainerID: result.ContainerID,
		Pass:        result.Pass,
		Events:      len(result.Trace),
		Errors:      result.Errors,
	}

	if opts.Format == "json" {
		if out.Pass {
			if err := formatter.Success(out); err != nil {
				return err
			}
		} else if err := formatter.Error(ErrCodeScenarioFailed, "scenario failed", out); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if opts.Trace {
			trace, err := harness.MarshalTrace(scenario.Name, result)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to render trace", err)
			}
			fmt.Fprint(w, string(trace))
		}
		if out.Pass {
			fmt.Fprintf(w, "✓ %s (%d events)\n", out.Scenario, out.Events)
		} else {
			fmt.Fprintf(w, "✗ %s\n", out.Scenario)
			for _, e := range out.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}

	if !out.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", out.Scenario))
	}
	return nil
}
