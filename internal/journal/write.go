package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/statetree/internal/event"
)

// Append writes ev to the journal.
//
// A transaction event is written together with its children in one SQL
// transaction, so readers never see half of it. Rows are keyed by
// (container_id, seq) with ON CONFLICT DO NOTHING, so appending the same
// event twice is a no-op.
func (j *Journal) Append(ctx context.Context, ev event.Event) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, child := range ev.Events() {
		if err := insertEvent(ctx, tx, child, ev.TransactionID()); err != nil {
			return err
		}
	}
	if err := insertEvent(ctx, tx, ev, ev.TransactionID()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append: commit: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, ev event.Event, transactionID string) error {
	metaJSON, err := marshalValue(ev.Meta())
	if err != nil {
		return fmt.Errorf("append %s: %w", ev.Kind(), err)
	}
	valueJSON, err := marshalValue(ev.Value())
	if err != nil {
		return fmt.Errorf("append %s: %w", ev.Kind(), err)
	}
	var previousJSON sql.NullString
	if ev.HadPrevious() {
		previousJSON, err = marshalValue(ev.Previous())
		if err != nil {
			return fmt.Errorf("append %s: %w", ev.Kind(), err)
		}
	}
	var pathJSON sql.NullString
	if ev.Path() != nil {
		pathJSON = nullString(ev.Path().String())
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events
		(container_id, seq, kind, path, meta, value, previous, had_previous, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(container_id, seq) DO NOTHING
	`,
		ev.ContainerID(),
		ev.Seq(),
		string(ev.Kind()),
		pathJSON,
		metaJSON,
		valueJSON,
		previousJSON,
		ev.HadPrevious(),
		nullString(transactionID),
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", ev.Kind(), err)
	}
	return nil
}

// Subscriber returns a listener that appends every delivered event.
//
// Listeners cannot fail the container, so write errors are logged and the
// event is dropped from the journal.
func (j *Journal) Subscriber(ctx context.Context, logger *slog.Logger) func(event.Event) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ev event.Event) {
		if err := j.Append(ctx, ev); err != nil {
			logger.Error("journal append failed",
				"container_id", ev.ContainerID(),
				"seq", ev.Seq(),
				"kind", ev.Kind(),
				"error", err)
		}
	}
}
