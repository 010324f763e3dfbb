package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/statetree/internal/value"
)

// MarshalJSON implements json.Marshaler. Fields are written in a fixed
// order and omitted when absent, so the output is stable for golden traces.
func (e Event) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"kind":"`)
	buf.WriteString(string(e.kind))
	buf.WriteString(`","seq":`)
	buf.WriteString(strconv.FormatInt(e.seq, 10))

	if e.containerID != "" {
		buf.WriteString(`,"container_id":`)
		id, _ := json.Marshal(e.containerID)
		buf.Write(id)
	}
	if e.transactionID != "" {
		buf.WriteString(`,"transaction_id":`)
		id, _ := json.Marshal(e.transactionID)
		buf.Write(id)
	}
	if e.path != nil {
		buf.WriteString(`,"path":`)
		buf.WriteString(e.path.String())
	}
	if err := writeValue(&buf, "meta", e.meta); err != nil {
		return nil, err
	}
	if e.hadPrevious {
		if err := writeValue(&buf, "previous", e.previous); err != nil {
			return nil, err
		}
	}
	if err := writeValue(&buf, "value", e.value); err != nil {
		return nil, err
	}
	if e.kind == KindTransaction {
		buf.WriteString(`,"events":[`)
		for i, child := range e.events {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := child.MarshalJSON()
			if err != nil {
				return nil, fmt.Errorf("events[%d]: %w", i, err)
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, field string, v value.Value) error {
	if v == nil {
		return nil
	}
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	buf.WriteString(`,"` + field + `":`)
	buf.Write(data)
	return nil
}
