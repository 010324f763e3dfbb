package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/statetree/internal/event"
	"github.com/roach88/statetree/internal/value"
)

// Record is one journaled event row.
type Record struct {
	ID            int64
	ContainerID   string
	Seq           int64
	Kind          event.Kind
	Path          string // canonical path encoding, empty for init and transaction rows
	Meta          value.Value
	Value         value.Value
	Previous      value.Value
	HadPrevious   bool
	TransactionID string
}

// Read returns every row for a container with deterministic ordering:
// ORDER BY seq ASC, id ASC.
//
// Returns an empty slice (not nil) if the container has no rows.
func (j *Journal) Read(ctx context.Context, containerID string) ([]Record, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, container_id, seq, kind, path, meta, value, previous, had_previous, transaction_id
		FROM events
		WHERE container_id = ?
		ORDER BY seq ASC, id ASC
	`, containerID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

// Containers lists journaled container ids in order of first appearance.
func (j *Journal) Containers(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT container_id
		FROM events
		GROUP BY container_id
		ORDER BY MIN(id) ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query containers: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan container: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate containers: %w", err)
	}
	return ids, nil
}

// LastSeq returns the highest journaled seq for a container, 0 if none.
func (j *Journal) LastSeq(ctx context.Context, containerID string) (int64, error) {
	var seq sql.NullInt64
	err := j.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM events WHERE container_id = ?
	`, containerID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec                          Record
		kind                         string
		path, meta, val, prev, txID sql.NullString
	)
	if err := rows.Scan(&rec.ID, &rec.ContainerID, &rec.Seq, &kind, &path, &meta, &val, &prev, &rec.HadPrevious, &txID); err != nil {
		return Record{}, fmt.Errorf("scan event: %w", err)
	}
	rec.Kind = event.Kind(kind)
	rec.Path = path.String
	rec.TransactionID = txID.String

	var err error
	if rec.Meta, err = unmarshalValue(meta); err != nil {
		return Record{}, fmt.Errorf("event %d meta: %w", rec.Seq, err)
	}
	if rec.Value, err = unmarshalValue(val); err != nil {
		return Record{}, fmt.Errorf("event %d value: %w", rec.Seq, err)
	}
	if rec.Previous, err = unmarshalValue(prev); err != nil {
		return Record{}, fmt.Errorf("event %d previous: %w", rec.Seq, err)
	}
	return rec, nil
}
