package value

import (
	"strconv"
	"strings"
)

// location tracks where in an input graph the walker is, for error messages.
// It is a persistent linked list so descending never copies.
type location struct {
	parent *location
	key    string
	index  int
	isIdx  bool
}

func (l *location) field(key string) *location {
	return &location{parent: l, key: key}
}

func (l *location) elem(i int) *location {
	return &location{parent: l, index: i, isIdx: true}
}

func (l *location) String() string {
	var parts []*location
	for cur := l; cur != nil; cur = cur.parent {
		parts = append(parts, cur)
	}
	var b strings.Builder
	b.WriteString("$")
	for i := len(parts) - 1; i >= 0; i-- {
		p := parts[i]
		if p.isIdx {
			b.WriteString("[")
			b.WriteString(strconv.Itoa(p.index))
			b.WriteString("]")
		} else {
			b.WriteString(".")
			b.WriteString(p.key)
		}
	}
	return b.String()
}
