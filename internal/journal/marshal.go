package journal

import (
	"database/sql"
	"fmt"

	"github.com/roach88/statetree/internal/value"
)

// marshalValue converts a value to JSON TEXT. Absent values become NULL.
func marshalValue(v value.Value) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := value.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal value: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalValue parses JSON TEXT. NULL decodes to nil.
func unmarshalValue(data sql.NullString) (value.Value, error) {
	if !data.Valid {
		return nil, nil
	}
	v, err := value.ParseJSON([]byte(data.String))
	if err != nil {
		return nil, fmt.Errorf("unmarshal value: %w", err)
	}
	return v, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
