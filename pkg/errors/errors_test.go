package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorWrapsSentinel(t *testing.T) {
	err := Newf(ErrDocumentUnavailable, "document %d", 42)
	assert.Equal(t, "document unavailable: document 42", err.Error())
	assert.True(t, errors.Is(err, ErrDocumentUnavailable))

	wrapped := fmt.Errorf("loading window: %w", err)
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "document 42", appErr.Message)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(New(ErrInvalidConfig, "windowSize must be positive")))
	assert.False(t, IsRetryable(fmt.Errorf("parse: %w", ErrMalformedQuery)))
	assert.True(t, IsRetryable(New(ErrSinkFailed, "postgres")))
	assert.True(t, IsRetryable(errors.New("connection reset")))
}
