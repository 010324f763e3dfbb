package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// A scenario builds a container from Initial, runs Steps against it and
// asserts on the delivered event stream and the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also prefixes the
	// deterministic container and transaction ids.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is an optional CUE schema file for "schema" assertions.
	// Relative paths are resolved against the scenario file.
	Schema string `yaml:"schema,omitempty"`

	// Initial is the container's initial state.
	Initial yaml.Node `yaml:"initial"`

	// Steps run in order. A failing step does not stop the scenario.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one container operation.
type Step struct {
	// Action is one of get, set, update, remove, transaction.
	Action string `yaml:"action"`

	// Path is a list of object keys (strings) and array indices (ints).
	// Empty means the root.
	Path []any `yaml:"path,omitempty"`

	// Value is the written value (set), or the operand of an update op.
	Value yaml.Node `yaml:"value,omitempty"`

	// Op selects the updater for update steps:
	// increment, append, merge, replace.
	Op string `yaml:"op,omitempty"`

	// Meta is attached to the emitted event.
	Meta yaml.Node `yaml:"meta,omitempty"`

	// Steps is the body of a transaction step.
	Steps []Step `yaml:"steps,omitempty"`

	// Expect is the value a get step must return.
	Expect yaml.Node `yaml:"expect,omitempty"`

	// ExpectError is the error code the step must fail with
	// (e.g. PATH_NOT_FOUND, NESTED_WRITE_FORBIDDEN, REFERENCE_CYCLE).
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step actions.
const (
	ActionGet         = "get"
	ActionSet         = "set"
	ActionUpdate      = "update"
	ActionRemove      = "remove"
	ActionTransaction = "transaction"
)

// Update ops.
const (
	OpIncrement = "increment"
	OpAppend    = "append"
	OpMerge     = "merge"
	OpReplace   = "replace"
)

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "event_count": number of delivered events
	// - "event_kinds": exact sequence of delivered event kinds
	// - "state": final value at Path equals Expect
	// - "schema": final state conforms to the scenario schema
	// - "lineage": lineage of Path in the final state equals Paths
	Type string `yaml:"type"`

	// Count is the expected number of events (event_count).
	Count int `yaml:"count,omitempty"`

	// Kinds is the expected kind sequence (event_kinds).
	Kinds []string `yaml:"kinds,omitempty"`

	// Flatten replaces transaction events by their children before
	// counting or comparing kinds.
	Flatten bool `yaml:"flatten,omitempty"`

	// Path addresses the checked location (state, lineage). Empty is the root.
	Path []any `yaml:"path,omitempty"`

	// Expect is the expected value (state).
	Expect yaml.Node `yaml:"expect,omitempty"`

	// Paths are the expected canonical path encodings (lineage), in order.
	Paths []string `yaml:"paths,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount = "event_count"
	AssertEventKinds = "event_kinds"
	AssertState      = "state"
	AssertSchema     = "schema"
	AssertLineage    = "lineage"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	// Resolve the schema path relative to the scenario BEFORE validation
	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
// Schema paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Initial.Kind == 0 {
		return fmt.Errorf("initial is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Schema != "" {
		if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
			return fmt.Errorf("schema file not found: %s", s.Schema)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(fmt.Sprintf("steps[%d]", i), &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(where string, step *Step) error {
	for i, part := range step.Path {
		switch p := part.(type) {
		case string:
		case int:
			if p < 0 {
				return fmt.Errorf("%s.path[%d]: index must be non-negative", where, i)
			}
		default:
			return fmt.Errorf("%s.path[%d]: must be a string or an int, got %T", where, i, part)
		}
	}

	switch step.Action {
	case ActionGet, ActionRemove:
	case ActionSet:
		if step.Value.Kind == 0 {
			return fmt.Errorf("%s: value is required for set", where)
		}
	case ActionUpdate:
		switch step.Op {
		case OpIncrement:
		case OpAppend, OpMerge, OpReplace:
			if step.Value.Kind == 0 {
				return fmt.Errorf("%s: value is required for op %s", where, step.Op)
			}
		case "":
			return fmt.Errorf("%s: op is required for update", where)
		default:
			return fmt.Errorf("%s: unknown op %q", where, step.Op)
		}
	case ActionTransaction:
		// A nested transaction is legal YAML; it is how scenarios check
		// CONCURRENT_TRANSACTION_FORBIDDEN.
		for i, inner := range step.Steps {
			if err := validateStep(fmt.Sprintf("%s.steps[%d]", where, i), &inner); err != nil {
				return err
			}
		}
	case "":
		return fmt.Errorf("%s: action is required", where)
	default:
		return fmt.Errorf("%s: unknown action %q", where, step.Action)
	}

	if step.Expect.Kind != 0 && step.Action != ActionGet {
		return fmt.Errorf("%s: expect is only valid on get steps", where)
	}
	if len(step.Steps) > 0 && step.Action != ActionTransaction {
		return fmt.Errorf("%s: steps are only valid on transaction steps", where)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertEventKinds:
		if len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: kinds list is required for event_kinds", index)
		}
	case AssertState:
		if a.Expect.Kind == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for state", index)
		}
	case AssertSchema:
		if s.Schema == "" {
			return fmt.Errorf("assertions[%d]: schema assertion needs a scenario schema file", index)
		}
	case AssertLineage:
		if len(a.Paths) == 0 {
			return fmt.Errorf("assertions[%d]: paths list is required for lineage", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
