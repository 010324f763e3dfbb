package engine

import (
	"errors"
	"fmt"
)

// StoreError represents a failed container operation.
type StoreError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the canonical encoding of the path involved, if any.
	Path string
}

// ErrorCode categorizes container errors.
type ErrorCode string

const (
	// ErrCodeInvalidPath indicates a path not produced by this container's factory.
	ErrCodeInvalidPath ErrorCode = "INVALID_PATH"

	// ErrCodePathNotFound indicates a read/update/remove target that does not exist.
	ErrCodePathNotFound ErrorCode = "PATH_NOT_FOUND"

	// ErrCodeNoContainer indicates the parent of the target cannot hold keys:
	// the root has no parent, and primitives have no children.
	ErrCodeNoContainer ErrorCode = "NO_CONTAINER"

	// ErrCodeIndexOutOfRange indicates an array write past the end.
	ErrCodeIndexOutOfRange ErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeCannotRemoveRoot indicates remove was called with the root path.
	ErrCodeCannotRemoveRoot ErrorCode = "CANNOT_REMOVE_ROOT"

	// ErrCodeNestedWriteForbidden indicates a write while an updater runs.
	ErrCodeNestedWriteForbidden ErrorCode = "NESTED_WRITE_FORBIDDEN"

	// ErrCodeConcurrentTransactionForbidden indicates a transaction inside a transaction.
	ErrCodeConcurrentTransactionForbidden ErrorCode = "CONCURRENT_TRANSACTION_FORBIDDEN"

	// ErrCodeTransactionDuringUpdateForbidden indicates a transaction inside an updater.
	ErrCodeTransactionDuringUpdateForbidden ErrorCode = "TRANSACTION_DURING_UPDATE_FORBIDDEN"

	// ErrCodeSubscriptionMutationForbidden indicates subscribe/unsubscribe
	// during an update or transaction.
	ErrCodeSubscriptionMutationForbidden ErrorCode = "SUBSCRIPTION_MUTATION_FORBIDDEN"
)

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path=%s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any StoreError with the same code.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidPath                      = &StoreError{Code: ErrCodeInvalidPath, Message: "path was not produced by this container"}
	ErrPathNotFound                     = &StoreError{Code: ErrCodePathNotFound, Message: "path does not exist"}
	ErrNoContainer                      = &StoreError{Code: ErrCodeNoContainer, Message: "no parent container"}
	ErrIndexOutOfRange                  = &StoreError{Code: ErrCodeIndexOutOfRange, Message: "array index out of range"}
	ErrCannotRemoveRoot                 = &StoreError{Code: ErrCodeCannotRemoveRoot, Message: "cannot remove the root"}
	ErrNestedWriteForbidden             = &StoreError{Code: ErrCodeNestedWriteForbidden, Message: "write attempted while an update is in progress"}
	ErrConcurrentTransactionForbidden   = &StoreError{Code: ErrCodeConcurrentTransactionForbidden, Message: "a transaction is already in progress"}
	ErrTransactionDuringUpdateForbidden = &StoreError{Code: ErrCodeTransactionDuringUpdateForbidden, Message: "transaction attempted while an update is in progress"}
	ErrSubscriptionMutationForbidden    = &StoreError{Code: ErrCodeSubscriptionMutationForbidden, Message: "subscriptions cannot change during an update or transaction"}
)

func newError(code ErrorCode, path string, format string, args ...any) *StoreError {
	return &StoreError{Code: code, Message: fmt.Sprintf(format, args...), Path: path}
}

// Code returns the ErrorCode of err if it is (or wraps) a StoreError.
func Code(err error) (ErrorCode, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}

// IsPathNotFound reports whether err is or wraps a PATH_NOT_FOUND error.
// Matching goes through errors.Is and StoreError.Is, so any message or path
// counts.
func IsPathNotFound(err error) bool {
	return errors.Is(err, ErrPathNotFound)
}

// IsReentrancyError reports whether err was raised by the re-entrancy guard
// rather than by the data.
func IsReentrancyError(err error) bool {
	code, ok := Code(err)
	if !ok {
		return false
	}
	switch code {
	case ErrCodeNestedWriteForbidden,
		ErrCodeConcurrentTransactionForbidden,
		ErrCodeTransactionDuringUpdateForbidden,
		ErrCodeSubscriptionMutationForbidden:
		return true
	}
	return false
}
