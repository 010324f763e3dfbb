package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/statetree/internal/engine"
	"github.com/roach88/statetree/internal/journal"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/schema"
	"github.com/roach88/statetree/internal/testutil"
	"github.com/roach88/statetree/internal/value"
)

// Harness executes one scenario against one container.
type Harness struct {
	container *engine.Container
	result    *Result
	logger    *slog.Logger
}

// RunOption configures a scenario run.
type RunOption func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	journal *journal.Journal
}

// WithLogger sets the logger for the run and its container.
// Defaults to a logger that discards everything.
func WithLogger(logger *slog.Logger) RunOption {
	return func(cfg *runConfig) {
		cfg.logger = logger
	}
}

// WithJournal appends the scenario's event stream to j.
func WithJournal(j *journal.Journal) RunOption {
	return func(cfg *runConfig) {
		cfg.journal = j
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Build the container from the scenario's initial state
// 2. Subscribe the trace recorder (and the journal, if any)
// 3. Execute steps, checking expect and expect_error
// 4. Evaluate assertions against the trace and the final state
//
// Ids come from testutil.SequentialIDs prefixed with the scenario name and
// seq numbers from a fresh testutil.DeterministicClock, so two runs of the
// same scenario produce identical traces.
//
// Returns an error only if the scenario cannot be run at all; step and
// assertion failures are reported in the result.
func Run(scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	initial, err := value.FromYAMLNode(&scenario.Initial)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}

	c, err := engine.New(initial,
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithIDGenerator(testutil.NewSequentialIDs(scenario.Name)),
		engine.WithLogger(cfg.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	h := &Harness{
		container: c,
		result:    NewResult(),
		logger:    cfg.logger,
	}
	h.result.ContainerID = c.ID()

	if _, err := c.Subscribe(h.result.record); err != nil {
		return nil, fmt.Errorf("subscribe trace: %w", err)
	}
	if cfg.journal != nil {
		if _, err := c.Subscribe(cfg.journal.Subscriber(context.Background(), cfg.logger)); err != nil {
			return nil, fmt.Errorf("subscribe journal: %w", err)
		}
	}

	for i, step := range scenario.Steps {
		h.runStep(fmt.Sprintf("steps[%d]", i), step)
	}
	h.result.State = c.Snapshot()

	actx := &AssertionContext{
		Paths: c.Paths(),
	}
	if scenario.Schema != "" {
		src, err := os.ReadFile(scenario.Schema)
		if err != nil {
			return nil, fmt.Errorf("read schema: %w", err)
		}
		if actx.Schema, err = schema.Compile(scenario.Schema, string(src)); err != nil {
			return nil, fmt.Errorf("compile schema: %w", err)
		}
	}
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"events", len(h.result.Trace),
		"pass", h.result.Pass)
	return h.result, nil
}

// runStep executes step and checks its outcome. It returns the step's
// error when that error was not expected, so a transaction body can abort.
func (h *Harness) runStep(where string, step Step) error {
	err := h.execute(where, step)

	switch {
	case step.ExpectError != "" && err == nil:
		h.result.AddError(fmt.Sprintf("%s: expected error %s, got success", where, step.ExpectError))
	case step.ExpectError != "" && errorCode(err) != step.ExpectError:
		h.result.AddError(fmt.Sprintf("%s: expected error %s, got %v", where, step.ExpectError, err))
	case step.ExpectError == "" && err != nil:
		h.result.AddError(fmt.Sprintf("%s: unexpected error: %v", where, err))
		return err
	}
	return nil
}

func (h *Harness) execute(where string, step Step) error {
	c := h.container

	p, err := c.Path(step.Path...)
	if err != nil {
		return err
	}
	var opts []engine.CallOption
	if step.Meta.Kind != 0 {
		meta, err := value.FromYAMLNode(&step.Meta)
		if err != nil {
			return err
		}
		opts = append(opts, engine.WithMeta(meta))
	}
	operand, err := optionalValue(&step.Value)
	if err != nil {
		return err
	}

	switch step.Action {
	case ActionGet:
		got, err := c.Get(p, opts...)
		if err != nil {
			return err
		}
		return h.checkExpect(where, step, got)
	case ActionSet:
		return c.Set(p, operand, opts...)
	case ActionUpdate:
		fn, err := updater(step.Op, operand)
		if err != nil {
			return err
		}
		return c.Update(p, fn, opts...)
	case ActionRemove:
		return c.Remove(p, opts...)
	case ActionTransaction:
		return c.Transaction(func() error {
			for i, inner := range step.Steps {
				if err := h.runStep(fmt.Sprintf("%s.steps[%d]", where, i), inner); err != nil {
					return err
				}
			}
			return nil
		}, opts...)
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}

func (h *Harness) checkExpect(where string, step Step, got value.Value) error {
	want, err := optionalValue(&step.Expect)
	if err != nil || want == nil {
		return err
	}
	if !value.Equal(want, got) {
		h.result.AddError(fmt.Sprintf("%s: get %s returned %s, expected %s",
			where, pathString(h.container.Paths(), step.Path), render(got), render(want)))
	}
	return nil
}

func optionalValue(n *yaml.Node) (value.Value, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	return value.FromYAMLNode(n)
}

// errorCode maps an error to the code scenarios name in expect_error.
func errorCode(err error) string {
	if code, ok := engine.Code(err); ok {
		return string(code)
	}
	var ce *value.CloneError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	if errors.Is(err, path.ErrInvalidPart) {
		return string(engine.ErrCodeInvalidPath)
	}
	return "ERROR"
}

func pathString(f *path.Factory, parts []any) string {
	p, err := f.New(parts...)
	if err != nil {
		return fmt.Sprint(parts)
	}
	return p.String()
}

func render(v value.Value) string {
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
