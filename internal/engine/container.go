package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/statetree/internal/cache"
	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/lineage"
	"github.com/roach88/statetree/internal/path"
	"github.com/roach88/statetree/internal/value"
)

// Listener receives every event a container emits.
type Listener func(event.Event)

// Unsubscribe removes a listener. It fails with SUBSCRIPTION_MUTATION_FORBIDDEN
// while an update or transaction is active. Calling it twice is a no-op.
type Unsubscribe func() error

// Updater receives a private working copy of the current value. It may mutate
// that copy in place and return nil, or return a replacement.
type Updater func(current value.Value) (value.Value, error)

// Container owns one state tree.
//
// Thread-safety model:
//   - A Container is NOT safe for concurrent use. Callers serialize access.
//   - Path() is safe from any goroutine (the path factory is locked).
//
// INVARIANTS:
//   - root is never frozen and never aliased outside the container
//   - inUpdate and tx are the only re-entrancy state; both are cleared on
//     every exit path, including panics
//   - every emitted event has a seq strictly greater than the one before, as
//     seen by every listener: events published while a delivery is running
//     wait in outbox until it finishes
type Container struct {
	id     string
	logger *slog.Logger
	clock  Sequencer
	ids    IDGenerator
	paths  *path.Factory
	cache  *cache.ReadCache

	root value.Value

	initialized bool
	pendingInit *event.Event

	inUpdate bool
	tx       *transaction

	listeners  []*subscription
	delivering bool
	outbox     []event.Event
}

type subscription struct {
	fn     Listener
	active bool
}

// New creates a container holding a clone of initial.
//
// Fails if initial cannot be cloned (nil, reference cycles).
func New(initial value.Value, opts ...Option) (*Container, error) {
	c := &Container{
		logger: slog.Default(),
		clock:  NewClock(),
		ids:    UUIDv7Generator{},
		paths:  path.NewFactory(),
		cache:  cache.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	root, err := value.Clone(initial)
	if err != nil {
		return nil, fmt.Errorf("initial state: %w", err)
	}
	c.root = root

	if c.id == "" {
		c.id = c.ids.Generate()
	}
	return c, nil
}

// ID returns the container id stamped on every event.
func (c *Container) ID() string { return c.id }

// Path returns the canonical path for parts. Parts are strings (object
// keys), non-negative ints (array indices), or paths, which are spliced in.
func (c *Container) Path(parts ...any) (*path.Path, error) {
	return c.paths.New(parts...)
}

// MustPath is like Path but panics on invalid parts.
func (c *Container) MustPath(parts ...any) *path.Path {
	return c.paths.Must(parts...)
}

// Paths returns the container's path factory.
func (c *Container) Paths() *path.Factory { return c.paths }

// Snapshot returns a frozen clone of the whole tree without emitting an
// event. Intended for tooling; application reads go through Get so that
// they are tracked.
func (c *Container) Snapshot() value.Value {
	return c.cache.Clone(c.paths.Root(), c.root)
}

// CanMutateSubscriptions reports whether Subscribe and Unsubscribe are
// currently allowed.
func (c *Container) CanMutateSubscriptions() bool {
	return !c.inUpdate && c.tx == nil
}

// Subscribe registers fn for the full event stream.
func (c *Container) Subscribe(fn Listener) (Unsubscribe, error) {
	if !c.CanMutateSubscriptions() {
		return nil, newError(ErrCodeSubscriptionMutationForbidden, "", "cannot subscribe during an update or transaction")
	}
	sub := &subscription{fn: fn, active: true}
	c.listeners = append(c.listeners, sub)

	return func() error {
		if !sub.active {
			return nil
		}
		if !c.CanMutateSubscriptions() {
			return newError(ErrCodeSubscriptionMutationForbidden, "", "cannot unsubscribe during an update or transaction")
		}
		sub.active = false
		for i, s := range c.listeners {
			if s == sub {
				c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
				break
			}
		}
		return nil
	}, nil
}

// Get returns a frozen clone of the value at p and emits a Get event.
//
// Repeated reads of an unchanged location return the same frozen value.
func (c *Container) Get(p *path.Path, opts ...CallOption) (value.Value, error) {
	if err := c.checkPath(p); err != nil {
		return nil, err
	}
	cfg, err := newCallConfig(opts)
	if err != nil {
		return nil, err
	}

	cur, ok := resolve(c.root, p)
	if !ok {
		return nil, newError(ErrCodePathNotFound, p.String(), "nothing stored at path")
	}
	c.ensureInit()
	out := c.cache.Clone(p, cur)

	if c.tx != nil && !c.tx.applying {
		// Reads run now; only the event waits for the batch.
		c.tx.enqueue(func() error {
			c.record(event.NewGet(c.header(cfg), p, out))
			return nil
		})
		return out, nil
	}
	c.record(event.NewGet(c.header(cfg), p, out))
	return out, nil
}

// Set stores a clone of v at p.
//
// At the root it replaces the whole tree. Object keys are created or
// replaced. Array index i replaces when i < len and appends when i == len.
func (c *Container) Set(p *path.Path, v value.Value, opts ...CallOption) error {
	if err := c.checkPath(p); err != nil {
		return err
	}
	if err := c.checkWrite(p); err != nil {
		return err
	}
	cfg, err := newCallConfig(opts)
	if err != nil {
		return err
	}
	next, err := value.Clone(v)
	if err != nil {
		return err
	}

	if c.deferred(func() error { return c.set(p, next, cfg) }) {
		return nil
	}
	return c.set(p, next, cfg)
}

func (c *Container) set(p *path.Path, next value.Value, cfg callConfig) error {
	if p.IsRoot() {
		c.ensureInit()
		prev := c.cache.Clone(p, c.root)
		c.replaceRoot(next)
		c.record(event.NewSet(c.header(cfg), p, prev, true, c.cache.Clone(p, next)))
		return nil
	}

	parent, err := c.parentOf(p)
	if err != nil {
		return err
	}
	old, had := child(parent, p.Last())
	if arr, ok := parent.(*value.Array); ok {
		if !p.Last().IsIndex() {
			return newError(ErrCodePathNotFound, p.String(), "arrays are indexed by position")
		}
		if p.Last().Index() > arr.Len() {
			return newError(ErrCodeIndexOutOfRange, p.String(), "index %d past length %d", p.Last().Index(), arr.Len())
		}
	} else if p.Last().IsIndex() {
		return newError(ErrCodePathNotFound, p.String(), "objects are keyed by name")
	}

	c.ensureInit()
	var prev value.Value
	if had {
		prev = c.cache.Clone(p, old)
	}
	if err := c.assign(parent, p.Last(), old, had, next); err != nil {
		return err
	}
	c.invalidate(p, old, next)
	c.record(event.NewSet(c.header(cfg), p, prev, had, c.cache.Clone(p, next)))
	return nil
}

// Update replaces the value at p with the updater's result.
//
// The updater runs with the container in the InUpdate state: reads are
// allowed, every write and every transaction fails. The updater's
// argument is a working copy, never the stored value itself.
func (c *Container) Update(p *path.Path, fn Updater, opts ...CallOption) error {
	if err := c.checkPath(p); err != nil {
		return err
	}
	if err := c.checkWrite(p); err != nil {
		return err
	}
	cfg, err := newCallConfig(opts)
	if err != nil {
		return err
	}

	if c.deferred(func() error { return c.update(p, fn, cfg) }) {
		return nil
	}
	return c.update(p, fn, cfg)
}

func (c *Container) update(p *path.Path, fn Updater, cfg callConfig) error {
	cur, ok := resolve(c.root, p)
	if !ok {
		return newError(ErrCodePathNotFound, p.String(), "nothing stored at path")
	}
	c.ensureInit()
	prev := c.cache.Clone(p, cur)
	c.invalidate(p, cur, nil)

	work, err := value.Clone(cur)
	if err != nil {
		return err
	}
	result, err := c.runUpdater(fn, work)
	if err != nil {
		return err
	}
	if result == nil {
		result = work
	}
	next, err := value.Clone(result)
	if err != nil {
		return err
	}

	if p.IsRoot() {
		c.replaceRoot(next)
	} else {
		parent, err := c.parentOf(p)
		if err != nil {
			return err
		}
		if err := c.assign(parent, p.Last(), cur, true, next); err != nil {
			return err
		}
		c.invalidate(p, cur, next)
	}
	c.record(event.NewUpdate(c.header(cfg), p, prev, c.cache.Clone(p, next)))
	return nil
}

func (c *Container) runUpdater(fn Updater, work value.Value) (value.Value, error) {
	c.inUpdate = true
	defer func() { c.inUpdate = false }()
	return fn(work)
}

// Remove deletes the value at p. Removing an array element shifts the
// later elements down.
func (c *Container) Remove(p *path.Path, opts ...CallOption) error {
	if err := c.checkPath(p); err != nil {
		return err
	}
	if p.IsRoot() {
		return newError(ErrCodeCannotRemoveRoot, p.String(), "the tree must always have a root value")
	}
	if err := c.checkWrite(p); err != nil {
		return err
	}
	cfg, err := newCallConfig(opts)
	if err != nil {
		return err
	}

	if c.deferred(func() error { return c.remove(p, cfg) }) {
		return nil
	}
	return c.remove(p, cfg)
}

func (c *Container) remove(p *path.Path, cfg callConfig) error {
	parent, err := c.parentOf(p)
	if err != nil {
		return err
	}
	old, ok := child(parent, p.Last())
	if !ok {
		return newError(ErrCodePathNotFound, p.String(), "nothing stored at path")
	}

	c.ensureInit()
	prev := c.cache.Clone(p, old)

	switch parent := parent.(type) {
	case *value.Object:
		name := p.Last().Name()
		pos := parent.IndexOf(name)
		if err := parent.Delete(name); err != nil {
			return err
		}
		c.onUndo(func() error { return parent.InsertAt(pos, name, old) })
		c.invalidate(p, old, nil)
	case *value.Array:
		// Every later sibling moves, so the whole array's lineage goes.
		stale := lineage.Compute(p.Parent(), parent)
		i := p.Last().Index()
		if err := parent.RemoveIndex(i); err != nil {
			return err
		}
		c.onUndo(func() error { return parent.Insert(i, old) })
		c.cache.Reconcile(stale)
	}

	c.record(event.NewRemove(c.header(cfg), p, prev))
	return nil
}

// assign stores next under k in parent and registers the inverse.
func (c *Container) assign(parent value.Value, k path.Key, old value.Value, had bool, next value.Value) error {
	switch parent := parent.(type) {
	case *value.Object:
		name := k.Name()
		if err := parent.Set(name, next); err != nil {
			return err
		}
		c.onUndo(func() error {
			if had {
				return parent.Set(name, old)
			}
			return parent.Delete(name)
		})
	case *value.Array:
		i := k.Index()
		if err := parent.SetIndex(i, next); err != nil {
			return err
		}
		c.onUndo(func() error {
			if had {
				return parent.SetIndex(i, old)
			}
			return parent.RemoveIndex(i)
		})
	default:
		return newError(ErrCodeNoContainer, "", "parent is not a container")
	}
	return nil
}

func (c *Container) replaceRoot(next value.Value) {
	old := c.root
	c.root = next
	c.cache.Reset()
	c.onUndo(func() error {
		c.root = old
		return nil
	})
}

// invalidate evicts the lineage of p for both the outgoing and the
// incoming value.
func (c *Container) invalidate(p *path.Path, old, next value.Value) {
	c.cache.Reconcile(lineage.Compute(p, old))
	if next != nil {
		c.cache.Reconcile(lineage.Descendants(p, next))
	}
}

func (c *Container) checkPath(p *path.Path) error {
	if p == nil || !c.paths.FromFactory(p) {
		return newError(ErrCodeInvalidPath, "", "path was not produced by this container")
	}
	return nil
}

func (c *Container) checkWrite(p *path.Path) error {
	if c.inUpdate {
		return newError(ErrCodeNestedWriteForbidden, p.String(), "write attempted while an update is in progress")
	}
	return nil
}

// ensureInit stamps the Init event on the first operation. It is delivered
// ahead of the next published event.
func (c *Container) ensureInit() {
	if c.initialized {
		return
	}
	c.initialized = true
	ev := event.NewInit(c.header(callConfig{}), c.cache.Clone(c.paths.Root(), c.root))
	c.pendingInit = &ev
}

func (c *Container) header(cfg callConfig) event.Header {
	return event.Header{
		Seq:         c.clock.Next(),
		ContainerID: c.id,
		Meta:        cfg.meta,
	}
}

// record routes an event to the open transaction, or publishes it.
func (c *Container) record(ev event.Event) {
	if c.tx != nil {
		c.tx.events = append(c.tx.events, ev)
		return
	}
	c.publish(ev)
}

func (c *Container) publish(ev event.Event) {
	if c.pendingInit != nil {
		c.outbox = append(c.outbox, *c.pendingInit)
		c.pendingInit = nil
	}
	c.outbox = append(c.outbox, ev)
	if c.delivering {
		return
	}

	c.delivering = true
	defer func() {
		c.delivering = false
		c.outbox = nil
	}()
	for len(c.outbox) > 0 {
		next := c.outbox[0]
		c.outbox = c.outbox[1:]
		c.broadcast(next)
	}
}

func (c *Container) broadcast(ev event.Event) {
	// Listeners may subscribe or unsubscribe while we iterate.
	snapshot := make([]*subscription, len(c.listeners))
	copy(snapshot, c.listeners)
	for _, sub := range snapshot {
		if sub.active {
			sub.fn(ev)
		}
	}
}
