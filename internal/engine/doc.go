// Package engine implements the state container: the single owner of a
// state tree, its access layer, and its event stream.
//
// ARCHITECTURE:
//
// Single Owner:
// A Container holds exactly one root value. Only Set, Update and Remove
// change it. Values crossing inward are cloned (the caller keeps no alias
// into engine memory), values crossing outward are frozen clones served by
// the read cache (holders cannot corrupt engine memory).
//
// Operation Order:
// Every public operation runs the same fixed sequence:
//  1. Validate the path (must come from this container's factory)
//  2. Check the re-entrancy state (idle, in update, in transaction)
//  3. Clone inputs (no state touched yet, failures leave nothing behind)
//  4. Perform the effect on state and invalidate the read cache
//  5. Emit, or buffer while a transaction is open
//
// Re-entrancy Guard:
// States are Idle, InUpdate and InTransaction. The guards are flags, not
// locks: a violation fails immediately, nothing waits.
//   - While an updater runs, every write and every transaction fails.
//   - While a transaction body runs, writes are queued and run in call
//     order after the body returns; a nested transaction fails.
//   - Subscriptions cannot change while either is active.
//
// Event Stream:
// The first operation ever performed against a container is preceded by an
// Init event carrying the then-current state. Every get emits too: reads are
// part of the stream so that reactive bindings can track dependencies
// exactly. A transaction is delivered as one Transaction event wrapping its
// CRUD events, so subscribers never see a partial transaction.
//
// CRITICAL PATTERNS:
//
// Logical Clock:
// Events are stamped with a per-container monotonic sequence from Clock.
// There are no wall-clock timestamps on events.
//
// Synchronous Only:
// Nothing here suspends. A transaction body must finish its work before it
// returns; writes issued later from a goroutine or callback are ordinary
// writes that happen after the transaction. Containers are not safe for
// concurrent use.
package engine
