package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	custom := ErrNotFound.WithMessage("Product not found")

	assert.ErrorIs(t, custom, ErrNotFound)
	assert.NotErrorIs(t, custom, ErrInvalidInput)
	assert.Equal(t, "Product not found", custom.Error())
	assert.Equal(t, "Resource not found", ErrNotFound.Message, "sentinel must not be mutated")

	wrapped := fmt.Errorf("loading: %w", custom)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestDomainError_WithCause(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := ErrTransientStore.WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrTransientStore)
	assert.Contains(t, err.Error(), "i/o timeout")
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(nil))
}
