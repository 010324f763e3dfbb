package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHelpers_SeeThroughWrapping(t *testing.T) {
	notFound := newError(ErrCodePathNotFound, `["a"]`, "nothing stored at path")
	wrapped := fmt.Errorf("load step: %w", notFound)

	assert.True(t, IsPathNotFound(notFound))
	assert.True(t, IsPathNotFound(wrapped))
	assert.False(t, IsPathNotFound(newError(ErrCodeInvalidPath, "", "foreign path")))
	assert.False(t, IsPathNotFound(errors.New("PATH_NOT_FOUND")))
	assert.False(t, IsPathNotFound(nil))

	code, ok := Code(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrCodePathNotFound, code)
	_, ok = Code(errors.New("plain"))
	assert.False(t, ok)

	assert.Equal(t, `PATH_NOT_FOUND: nothing stored at path (path=["a"])`, notFound.Error())
}

func TestIsReentrancyError(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeNestedWriteForbidden, true},
		{ErrCodeConcurrentTransactionForbidden, true},
		{ErrCodeTransactionDuringUpdateForbidden, true},
		{ErrCodeSubscriptionMutationForbidden, true},
		{ErrCodePathNotFound, false},
		{ErrCodeIndexOutOfRange, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", newError(tt.code, "", "x"))
			assert.Equal(t, tt.want, IsReentrancyError(err))
		})
	}
}
