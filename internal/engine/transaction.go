package engine

import (
	"errors"

	"github.com/roach88/statetree/internal/event"
)

// transaction is the state of an open Transaction call.
//
// Lifecycle:
//  1. body phase: reads execute, writes are validated and queued in ops
//  2. apply phase: ops run in call order, events collect in events,
//     every state change pushes its inverse onto undo
//  3. commit (one Transaction event) or rollback (undo in reverse, nothing
//     emitted)
type transaction struct {
	id       string
	ops      []func() error
	applying bool
	events   []event.Event
	undo     []func() error
}

func (tx *transaction) enqueue(op func() error) {
	tx.ops = append(tx.ops, op)
}

// rollback reverts every applied change, newest first.
func (tx *transaction) rollback() error {
	var errs []error
	for i := len(tx.undo) - 1; i >= 0; i-- {
		if err := tx.undo[i](); err != nil {
			errs = append(errs, err)
		}
	}
	tx.undo = nil
	tx.events = nil
	return errors.Join(errs...)
}

// deferred queues op when a transaction body is running.
func (c *Container) deferred(op func() error) bool {
	if c.tx == nil || c.tx.applying {
		return false
	}
	c.tx.enqueue(op)
	return true
}

// onUndo registers the inverse of a state change made while applying a
// transaction. Outside transactions changes are final.
func (c *Container) onUndo(fn func() error) {
	if c.tx != nil && c.tx.applying {
		c.tx.undo = append(c.tx.undo, fn)
	}
}

// Transaction runs body and applies its writes as one unit.
//
// Reads inside body run immediately against the state as it was when the
// transaction began. Writes are validated and their inputs cloned at call
// time, then run in call order once body returns. Subscribers receive one
// Transaction event wrapping every CRUD event of the batch, in call order.
//
// If body returns an error, queued writes are discarded. If a queued write
// fails, the writes already applied are reverted. Either way nothing is
// emitted and the error is returned.
//
// body must finish its work synchronously. Operations issued after body
// returns (from goroutines, timers, callbacks) are ordinary operations
// that happen after the transaction.
func (c *Container) Transaction(body func() error, opts ...CallOption) (err error) {
	if c.inUpdate {
		return newError(ErrCodeTransactionDuringUpdateForbidden, "", "transaction attempted while an update is in progress")
	}
	if c.tx != nil {
		return newError(ErrCodeConcurrentTransactionForbidden, "", "a transaction is already in progress")
	}
	cfg, err := newCallConfig(opts)
	if err != nil {
		return err
	}

	c.ensureInit()
	tx := &transaction{id: c.ids.Generate()}
	c.tx = tx

	committed := false
	defer func() {
		if committed {
			return
		}
		if tx.applying {
			if rbErr := tx.rollback(); rbErr != nil {
				c.logger.Error("transaction rollback incomplete",
					"transaction_id", tx.id,
					"error", rbErr)
			}
			c.cache.Reset()
		}
		c.tx = nil
		c.logger.Debug("transaction aborted",
			"container_id", c.id,
			"transaction_id", tx.id,
			"queued", len(tx.ops),
			"error", err)
	}()

	if err = body(); err != nil {
		return err
	}

	tx.applying = true
	for _, op := range tx.ops {
		if err = op(); err != nil {
			return err
		}
	}

	committed = true
	c.tx = nil
	ev := event.NewTransaction(c.header(cfg), tx.id, tx.events)
	c.logger.Debug("transaction committed",
		"container_id", c.id,
		"transaction_id", tx.id,
		"events", ev.Len())
	c.publish(ev)
	return nil
}
