// Package harness provides conformance testing for state containers.
//
// A scenario builds a container, drives it through a list of operations
// and asserts on the delivered event stream and the final state. The same
// scenarios back the golden trace tests and the `statetree run` command.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: counter
//	description: "What this scenario validates"
//	schema: counter.cue            # optional, for schema assertions
//	initial: { count: 0 }
//	steps:
//	  - action: set
//	    path: [count]
//	    value: 5
//	  - action: update
//	    path: [count]
//	    op: increment
//	  - action: get
//	    path: [count]
//	    expect: 6
//	  - action: remove
//	    path: []
//	    expect_error: CANNOT_REMOVE_ROOT
//	  - action: transaction
//	    steps:
//	      - action: set
//	        path: [label]
//	        value: done
//	assertions:
//	  - type: event_kinds
//	    kinds: [init, set, update, get, transaction]
//	  - type: state
//	    path: [count]
//	    expect: 6
//
// # Assertion Types
//
//   - event_count: number of delivered events (flatten: true counts
//     transaction children instead of the transaction)
//   - event_kinds: exact kind sequence, same flatten option
//   - state: final value at path equals expect
//   - schema: final state conforms to the scenario's CUE schema
//   - lineage: lineage of path in the final state, as canonical encodings
//
// # Deterministic Testing
//
// The harness uses:
//   - Sequential ids prefixed with the scenario name (testutil.SequentialIDs)
//   - Deterministic logical clock (testutil.DeterministicClock)
//
// This ensures identical traces across runs for golden file comparison.
package harness
