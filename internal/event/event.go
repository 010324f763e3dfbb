// Package event defines the immutable records a container emits for every
// access and mutation.
//
// Discrimination is by an explicit Kind tag, never by inspecting payloads.
// Events are values with unexported fields, so their shape cannot be
// changed after construction, and every payload value is frozen.
package event

import (
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/value"
)

// Kind tags an event.
type Kind string

const (
	KindInit        Kind = "init"
	KindGet         Kind = "get"
	KindSet         Kind = "set"
	KindUpdate      Kind = "update"
	KindRemove      Kind = "remove"
	KindTransaction Kind = "transaction"
)

// Event is one unit of container activity.
//
// Field presence by kind:
//
//	init         Value (full state)
//	get          Path, Meta, Value
//	set          Path, Meta, Previous (if HadPrevious), Value
//	update       Path, Meta, Previous, Value
//	remove       Path, Meta, Previous
//	transaction  Meta, Events, TransactionID
type Event struct {
	kind          Kind
	seq           int64
	containerID   string
	path          *path.Path
	meta          value.Value
	value         value.Value
	previous      value.Value
	hadPrevious   bool
	events        []Event
	transactionID string
}

// Kind returns the event tag.
func (e Event) Kind() Kind { return e.kind }

// Seq returns the container-local logical timestamp. Strictly increasing
// in emission order of construction.
func (e Event) Seq() int64 { return e.seq }

// ContainerID identifies the emitting container.
func (e Event) ContainerID() string { return e.containerID }

// Path returns the accessed path, or nil for init and transaction events.
func (e Event) Path() *path.Path { return e.path }

// Meta returns caller-supplied metadata, or nil.
func (e Event) Meta() value.Value { return e.meta }

// Value returns the read or written value (the whole state for init), or
// nil for remove and transaction events.
func (e Event) Value() value.Value { return e.value }

// Previous returns the value replaced or removed, or nil.
func (e Event) Previous() value.Value { return e.previous }

// HadPrevious reports whether a value existed at the path before the write.
// It separates "no previous value" from a stored Null.
func (e Event) HadPrevious() bool { return e.hadPrevious }

// Events returns a copy of the CRUD events of a transaction, in call order.
func (e Event) Events() []Event {
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// Len returns the number of CRUD events of a transaction.
func (e Event) Len() int { return len(e.events) }

// TransactionID returns the transaction identifier, or "".
func (e Event) TransactionID() string { return e.transactionID }

// Header carries the fields every event has.
type Header struct {
	Seq         int64
	ContainerID string
	Meta        value.Value
}

func (h Header) event(kind Kind) Event {
	return Event{
		kind:        kind,
		seq:         h.Seq,
		containerID: h.ContainerID,
		meta:        freeze(h.Meta),
	}
}

// NewInit creates an init event carrying the full state.
func NewInit(h Header, state value.Value) Event {
	e := h.event(KindInit)
	e.value = freeze(state)
	return e
}

// NewGet creates a get event.
func NewGet(h Header, p *path.Path, v value.Value) Event {
	e := h.event(KindGet)
	e.path = p
	e.value = freeze(v)
	return e
}

// NewSet creates a set event. previous is ignored unless hadPrevious.
func NewSet(h Header, p *path.Path, previous value.Value, hadPrevious bool, v value.Value) Event {
	e := h.event(KindSet)
	e.path = p
	e.value = freeze(v)
	if hadPrevious {
		e.previous = freeze(previous)
		e.hadPrevious = true
	}
	return e
}

// NewUpdate creates an update event.
func NewUpdate(h Header, p *path.Path, previous, v value.Value) Event {
	e := h.event(KindUpdate)
	e.path = p
	e.previous = freeze(previous)
	e.hadPrevious = true
	e.value = freeze(v)
	return e
}

// NewRemove creates a remove event.
func NewRemove(h Header, p *path.Path, previous value.Value) Event {
	e := h.event(KindRemove)
	e.path = p
	e.previous = freeze(previous)
	e.hadPrevious = true
	return e
}

// NewTransaction creates a transaction event wrapping CRUD events.
// The slice is copied.
func NewTransaction(h Header, transactionID string, events []Event) Event {
	e := h.event(KindTransaction)
	e.transactionID = transactionID
	e.events = make([]Event, len(events))
	copy(e.events, events)
	return e
}

func freeze(v value.Value) value.Value {
	if v == nil {
		return nil
	}
	return value.Freeze(v)
}
