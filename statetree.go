// Package statetree is an in-memory, path-addressed state container.
//
// A Container holds one tree of plain values (objects, arrays, strings,
// numbers, big integers, booleans, null and binary blobs). Every read and
// write goes through an interned Path and emits an Event to subscribers,
// so the full history of the tree is observable. Reads return frozen
// snapshots that share structure with earlier reads until a write
// invalidates the lineage they belong to.
//
//	c, err := statetree.New(statetree.ObjectOf(statetree.P("count", statetree.Number(0))))
//	if err != nil {
//		return err
//	}
//	unsubscribe, _ := c.Subscribe(func(ev statetree.Event) {
//		log.Println(ev.Kind(), ev.Path())
//	})
//	defer unsubscribe()
//
//	count := c.MustPath("count")
//	_ = c.Update(count, func(v statetree.Value) (statetree.Value, error) {
//		return v.(statetree.Number) + 1, nil
//	})
//
// Containers are single-goroutine objects; callers that share one across
// goroutines must serialize access.
package statetree

import (
	"github.com/roach88/statetree/internal/engine"
	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/lineage"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/value"
)

type (
	// Container is an observable state tree.
	Container = engine.Container
	// Option configures a Container.
	Option = engine.Option
	// CallOption configures a single operation.
	CallOption = engine.CallOption
	// Listener receives events.
	Listener = engine.Listener
	// Unsubscribe removes a listener.
	Unsubscribe = engine.Unsubscribe
	// Updater computes a new value from a working copy of the current one.
	Updater = engine.Updater
	// IDGenerator produces container and transaction ids.
	IDGenerator = engine.IDGenerator
	// Sequencer produces strictly increasing event sequence numbers.
	Sequencer = engine.Sequencer

	StoreError = engine.StoreError
	ErrorCode  = engine.ErrorCode
	CloneError = value.CloneError

	Value  = value.Value
	Object = value.Object
	Array  = value.Array
	Blob   = value.Blob
	Null   = value.Null
	String = value.String
	Number = value.Number
	Bool   = value.Bool
	BigInt = value.BigInt
	Pair   = value.Pair

	Path  = path.Path
	Event = event.Event
	Kind  = event.Kind
)

// Event kinds.
const (
	KindInit        = event.KindInit
	KindGet         = event.KindGet
	KindSet         = event.KindSet
	KindUpdate      = event.KindUpdate
	KindRemove      = event.KindRemove
	KindTransaction = event.KindTransaction
)

// Error codes.
const (
	ErrCodeInvalidPath                      = engine.ErrCodeInvalidPath
	ErrCodePathNotFound                     = engine.ErrCodePathNotFound
	ErrCodeNoContainer                      = engine.ErrCodeNoContainer
	ErrCodeIndexOutOfRange                  = engine.ErrCodeIndexOutOfRange
	ErrCodeCannotRemoveRoot                 = engine.ErrCodeCannotRemoveRoot
	ErrCodeNestedWriteForbidden             = engine.ErrCodeNestedWriteForbidden
	ErrCodeConcurrentTransactionForbidden   = engine.ErrCodeConcurrentTransactionForbidden
	ErrCodeTransactionDuringUpdateForbidden = engine.ErrCodeTransactionDuringUpdateForbidden
	ErrCodeSubscriptionMutationForbidden    = engine.ErrCodeSubscriptionMutationForbidden
)

// Sentinels for errors.Is.
var (
	ErrInvalidPath                      = engine.ErrInvalidPath
	ErrPathNotFound                     = engine.ErrPathNotFound
	ErrNoContainer                      = engine.ErrNoContainer
	ErrIndexOutOfRange                  = engine.ErrIndexOutOfRange
	ErrCannotRemoveRoot                 = engine.ErrCannotRemoveRoot
	ErrNestedWriteForbidden             = engine.ErrNestedWriteForbidden
	ErrConcurrentTransactionForbidden   = engine.ErrConcurrentTransactionForbidden
	ErrTransactionDuringUpdateForbidden = engine.ErrTransactionDuringUpdateForbidden
	ErrSubscriptionMutationForbidden    = engine.ErrSubscriptionMutationForbidden

	ErrUncloneable           = value.ErrUncloneable
	ErrReferenceCycle        = value.ErrReferenceCycle
	ErrGetterSetterForbidden = value.ErrGetterSetterForbidden
	ErrInvalidDescriptor     = value.ErrInvalidDescriptor
	ErrInvalidShape          = value.ErrInvalidShape
	ErrAmbiguousKey          = value.ErrAmbiguousKey
	ErrFrozen                = value.ErrFrozen
)

// New creates a container holding a clone of initial.
func New(initial Value, opts ...Option) (*Container, error) {
	return engine.New(initial, opts...)
}

// Container options.
var (
	WithLogger      = engine.WithLogger
	WithClock       = engine.WithClock
	WithIDGenerator = engine.WithIDGenerator
	WithID          = engine.WithID
	WithMeta        = engine.WithMeta
)

// ObjectOf builds an object from key/value pairs in order.
func ObjectOf(pairs ...Pair) *Object { return value.ObjectOf(pairs...) }

// P is one object entry.
func P(key string, v Value) Pair { return value.P(key, v) }

// NewObject returns an empty object.
func NewObject() *Object { return value.NewObject() }

// NewArray builds an array.
func NewArray(items ...Value) *Array { return value.NewArray(items...) }

// From converts a plain Go value (maps, slices, structs, primitives,
// []byte, *big.Int) into a Value.
func From(x any) (Value, error) { return value.From(x) }

// Equal reports deep structural equality.
func Equal(a, b Value) bool { return value.Equal(a, b) }

var (
	NewBlob         = value.NewBlob
	NewFile         = value.NewFile
	NewBigInt       = value.NewBigInt
	BigIntFromInt64 = value.BigIntFromInt64
	ParseJSON       = value.ParseJSON
	MarshalJSON     = value.Marshal
)

// Value classification.
var (
	IsPrimitive      = value.IsPrimitive
	IsKeyedContainer = value.IsKeyedContainer
	IsSequence       = value.IsSequence
	IsBlob           = value.IsBlob
	IsFile           = value.IsFile
)

// Event predicates.
var (
	IsInit        = event.IsInit
	IsGet         = event.IsGet
	IsSet         = event.IsSet
	IsUpdate      = event.IsUpdate
	IsRemove      = event.IsRemove
	IsWrite       = event.IsWrite
	IsCRUD        = event.IsCRUD
	IsTransaction = event.IsTransaction
	Flatten       = event.Flatten
)

// ComputeLineage returns the ancestors of p (root first), p itself, and
// every path below p within v. A write at p invalidates exactly these
// paths.
func ComputeLineage(p *Path, v Value) []*Path {
	return lineage.Compute(p, v)
}

// Code returns the ErrorCode of err if it is (or wraps) a StoreError.
func Code(err error) (ErrorCode, bool) { return engine.Code(err) }

// IsPathNotFound reports whether err is a PATH_NOT_FOUND error.
func IsPathNotFound(err error) bool { return engine.IsPathNotFound(err) }

// IsReentrancyError reports whether err came from a write, transaction or
// subscription change attempted at a forbidden time.
func IsReentrancyError(err error) bool { return engine.IsReentrancyError(err) }
