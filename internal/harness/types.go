package harness

import (
	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/value"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step behaved as expected and every assertion held.
	Pass bool `json:"pass"`

	// ContainerID is the deterministic id of the scenario's container.
	ContainerID string `json:"container_id"`

	// Trace contains every delivered event in order.
	Trace []event.Event `json:"trace"`

	// Errors contains step and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the final state, frozen.
	State value.Value `json:"state"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []event.Event{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// record is the trace listener.
func (r *Result) record(ev event.Event) {
	r.Trace = append(r.Trace, ev)
}
