package value

import "fmt"

// CloneErrorCode categorizes value integrity violations.
type CloneErrorCode string

const (
	// ErrCodeUncloneable indicates the input type has no clone strategy.
	ErrCodeUncloneable CloneErrorCode = "UNCLONEABLE"

	// ErrCodeReferenceCycle indicates a container reachable twice (alias or cycle).
	ErrCodeReferenceCycle CloneErrorCode = "REFERENCE_CYCLE"

	// ErrCodeGetterSetterForbidden indicates a value that computes its own
	// representation instead of exposing plain data.
	ErrCodeGetterSetterForbidden CloneErrorCode = "GETTER_SETTER_FORBIDDEN"

	// ErrCodeInvalidDescriptor indicates hidden (unexported) struct fields.
	ErrCodeInvalidDescriptor CloneErrorCode = "INVALID_DESCRIPTOR"

	// ErrCodeInvalidShape indicates inherited (embedded) struct members.
	ErrCodeInvalidShape CloneErrorCode = "INVALID_SHAPE"

	// ErrCodeAmbiguousKey indicates two object keys that differ in bytes but
	// share a Unicode NFC form.
	ErrCodeAmbiguousKey CloneErrorCode = "AMBIGUOUS_KEY"
)

// CloneError reports why a value could not be admitted.
type CloneError struct {
	// Code identifies the violation.
	Code CloneErrorCode

	// Location is where in the input graph the violation was found,
	// in the form $.a[0].b.
	Location string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *CloneError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Location)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any CloneError with the same code, so the sentinels below work
// with errors.Is.
func (e *CloneError) Is(target error) bool {
	ce, ok := target.(*CloneError)
	return ok && ce.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUncloneable           = &CloneError{Code: ErrCodeUncloneable, Message: "value has no clone strategy"}
	ErrReferenceCycle        = &CloneError{Code: ErrCodeReferenceCycle, Message: "must be reference agnostic"}
	ErrGetterSetterForbidden = &CloneError{Code: ErrCodeGetterSetterForbidden, Message: "computed representations are forbidden"}
	ErrInvalidDescriptor     = &CloneError{Code: ErrCodeInvalidDescriptor, Message: "hidden fields are forbidden"}
	ErrInvalidShape          = &CloneError{Code: ErrCodeInvalidShape, Message: "embedded fields are forbidden"}
	ErrAmbiguousKey          = &CloneError{Code: ErrCodeAmbiguousKey, Message: "canonically equivalent keys"}
)

func newCloneError(code CloneErrorCode, loc *location, format string, args ...any) *CloneError {
	return &CloneError{Code: code, Location: loc.String(), Message: fmt.Sprintf(format, args...)}
}
