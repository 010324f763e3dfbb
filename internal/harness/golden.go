package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceHeader is the first line of a trace snapshot.
type TraceHeader struct {
	Scenario    string `json:"scenario"`
	ContainerID string `json:"container_id"`
	Pass        bool   `json:"pass"`
	Events      int    `json:"events"`
}

// MarshalTrace renders a result as JSON lines: the header, then one
// compact event per line. Every field is written in a fixed order, so the
// output is byte-identical across runs.
func MarshalTrace(scenarioName string, result *Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	header := TraceHeader{
		Scenario:    scenarioName,
		ContainerID: result.ContainerID,
		Pass:        result.Pass,
		Events:      len(result.Trace),
	}
	if err := enc.Encode(header); err != nil {
		return nil, fmt.Errorf("marshal trace header: %w", err)
	}
	for i, ev := range result.Trace {
		data, err := ev.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal trace[%d]: %w", i, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
