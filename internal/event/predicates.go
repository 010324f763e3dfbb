package event

// IsInit reports whether e is the initial-state event.
func IsInit(e Event) bool { return e.kind == KindInit }

// IsGet reports whether e is a read.
func IsGet(e Event) bool { return e.kind == KindGet }

// IsSet reports whether e is a set.
func IsSet(e Event) bool { return e.kind == KindSet }

// IsUpdate reports whether e is an update.
func IsUpdate(e Event) bool { return e.kind == KindUpdate }

// IsRemove reports whether e is a removal.
func IsRemove(e Event) bool { return e.kind == KindRemove }

// IsWrite reports whether e is a set, update or remove.
func IsWrite(e Event) bool { return IsSet(e) || IsUpdate(e) || IsRemove(e) }

// IsCRUD reports whether e is a read or a write.
func IsCRUD(e Event) bool { return IsGet(e) || IsWrite(e) }

// IsTransaction reports whether e wraps a transaction.
func IsTransaction(e Event) bool { return e.kind == KindTransaction }

// Flatten returns e's CRUD events if e is a transaction, otherwise e itself.
func Flatten(e Event) []Event {
	if IsTransaction(e) {
		return e.Events()
	}
	return []Event{e}
}
