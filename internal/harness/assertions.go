package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/lineage"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/schema"
	"github.com/roach88/statetree/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []event.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, ev := range e.Trace {
		if ev.Path() != nil {
			fmt.Fprintf(&buf, "  [%d] %s %s\n", i+1, ev.Kind(), ev.Path())
		} else {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, ev.Kind())
		}
	}

	return buf.String()
}

// AssertionContext provides what assertions need beyond the result.
type AssertionContext struct {
	// Paths is the container's path factory.
	Paths *path.Factory

	// Schema is the compiled scenario schema, nil if none.
	Schema *schema.Schema
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertEventCount:
		return assertEventCount(result.Trace, a)
	case AssertEventKinds:
		return assertEventKinds(result.Trace, a)
	case AssertState:
		return assertState(result, a, actx)
	case AssertSchema:
		return assertSchema(result, actx)
	case AssertLineage:
		return assertLineage(result, a, actx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func trace(events []event.Event, flatten bool) []event.Event {
	if !flatten {
		return events
	}
	var out []event.Event
	for _, ev := range events {
		out = append(out, event.Flatten(ev)...)
	}
	return out
}

// assertEventCount checks the number of delivered events.
func assertEventCount(events []event.Event, a Assertion) error {
	got := len(trace(events, a.Flatten))
	if got != a.Count {
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d events", a.Count),
			Actual:   fmt.Sprintf("%d events", got),
			Trace:    events,
		}
	}
	return nil
}

// assertEventKinds checks the exact kind sequence.
func assertEventKinds(events []event.Event, a Assertion) error {
	flat := trace(events, a.Flatten)
	got := make([]string, len(flat))
	for i, ev := range flat {
		got[i] = string(ev.Kind())
	}
	if strings.Join(got, ",") != strings.Join(a.Kinds, ",") {
		return &AssertionError{
			Type:     AssertEventKinds,
			Expected: fmt.Sprintf("%v", a.Kinds),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    events,
		}
	}
	return nil
}

// assertState compares the final value at a path.
func assertState(result *Result, a Assertion, actx *AssertionContext) error {
	want, err := value.FromYAMLNode(&a.Expect)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}
	p, err := actx.Paths.New(a.Path...)
	if err != nil {
		return err
	}

	got, ok := lookup(result.State, p)
	if !ok {
		return &AssertionError{
			Type:     AssertState,
			Expected: fmt.Sprintf("%s = %s", p, render(want)),
			Actual:   fmt.Sprintf("%s does not exist", p),
			Trace:    result.Trace,
		}
	}
	if !value.Equal(want, got) {
		return &AssertionError{
			Type:     AssertState,
			Expected: fmt.Sprintf("%s = %s", p, render(want)),
			Actual:   fmt.Sprintf("%s = %s", p, render(got)),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertSchema validates the final state against the scenario schema.
func assertSchema(result *Result, actx *AssertionContext) error {
	if actx.Schema == nil {
		return fmt.Errorf("no schema loaded")
	}
	verrs := actx.Schema.Validate(result.State)
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return &AssertionError{
		Type:     AssertSchema,
		Expected: "final state conforms to schema",
		Actual:   strings.Join(msgs, "; "),
		Trace:    result.Trace,
	}
}

// assertLineage compares the lineage of a path in the final state.
func assertLineage(result *Result, a Assertion, actx *AssertionContext) error {
	p, err := actx.Paths.New(a.Path...)
	if err != nil {
		return err
	}
	v, _ := lookup(result.State, p)

	var got []string
	for _, lp := range lineage.Compute(p, v) {
		got = append(got, lp.String())
	}
	if strings.Join(got, " ") != strings.Join(a.Paths, " ") {
		return &AssertionError{
			Type:     AssertLineage,
			Expected: strings.Join(a.Paths, " "),
			Actual:   strings.Join(got, " "),
			Trace:    result.Trace,
		}
	}
	return nil
}

// lookup walks a snapshot. Assertions read the snapshot rather than the
// container so they add nothing to the trace.
func lookup(v value.Value, p *path.Path) (value.Value, bool) {
	for _, k := range p.Keys() {
		switch c := v.(type) {
		case *value.Object:
			if k.IsIndex() {
				return nil, false
			}
			next, ok := c.Get(k.Name())
			if !ok {
				return nil, false
			}
			v = next
		case *value.Array:
			if !k.IsIndex() {
				return nil, false
			}
			next, ok := c.At(k.Index())
			if !ok {
				return nil, false
			}
			v = next
		default:
			return nil, false
		}
	}
	return v, true
}
