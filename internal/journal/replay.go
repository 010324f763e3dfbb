package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/statetree/internal/engine"
	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/value"
)

// ErrNoInit is returned by Replay when a container has no init row.
var ErrNoInit = errors.New("journal has no init event for container")

// Replay rebuilds a container's latest state from its journal.
//
// It starts from the init row and re-applies every set, update and remove
// row in seq order against a fresh container. Gets and transaction rows
// carry no state change and are skipped; a transaction's effect is in its
// children.
func (j *Journal) Replay(ctx context.Context, containerID string) (value.Value, error) {
	records, err := j.Read(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	var c *engine.Container
	for _, rec := range records {
		if rec.Kind == event.KindInit {
			if c, err = engine.New(rec.Value, engine.WithID(containerID)); err != nil {
				return nil, fmt.Errorf("replay init: %w", err)
			}
			continue
		}
		if c == nil {
			continue
		}
		if err := apply(c, rec); err != nil {
			return nil, fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
	}
	if c == nil {
		return nil, ErrNoInit
	}
	return c.Snapshot(), nil
}

func apply(c *engine.Container, rec Record) error {
	switch rec.Kind {
	case event.KindSet, event.KindUpdate, event.KindRemove:
	default:
		return nil
	}

	p, err := c.Paths().Parse(rec.Path)
	if err != nil {
		return err
	}
	if rec.Kind == event.KindRemove {
		return c.Remove(p)
	}
	return c.Set(p, rec.Value)
}
