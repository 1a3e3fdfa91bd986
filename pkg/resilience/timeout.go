package resilience

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
)

// WithTimeout runs fn under a context cancelled after timeout. If fn has not
// returned by then, WithTimeout returns an error wrapping
// apperrors.ErrTimeout without waiting for it. A zero timeout runs fn
// directly.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(timeoutCtx)
	}()
	select {
	case err := <-done:
		return err
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s: parent context cancelled: %w", name, ctx.Err())
		}
		return apperrors.Newf(apperrors.ErrTimeout, "%s exceeded %v", name, timeout)
	}
}
