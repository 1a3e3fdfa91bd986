package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentUnavailable = errors.New("document unavailable")
	ErrMalformedQuery      = errors.New("malformed query token")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrCacheUnavailable    = errors.New("cache unavailable")
	ErrSinkFailed          = errors.New("result sink failed")
	ErrTimeout             = errors.New("operation timed out")
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsRetryable reports whether err is worth another attempt. Configuration
// and input errors never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrMalformedQuery):
		return false
	default:
		return true
	}
}
