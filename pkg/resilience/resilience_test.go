package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
)

var fast = RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fast, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	sentinel := errors.New("down")
	err := Retry(context.Background(), "op", fast, func(context.Context) error {
		calls++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", fast, func(context.Context) error {
		calls++
		return apperrors.New(apperrors.ErrInvalidConfig, "bad dsn")
	})
	require.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	assert.Equal(t, 1, calls)
}

func TestRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour}
	calls := 0
	err := Retry(ctx, "op", cfg, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffCapped(t *testing.T) {
	cfg := RetryConfig{InitialDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 10}.withDefaults()
	assert.LessOrEqual(t, backoff(5, cfg), 3*time.Second)
	assert.Greater(t, backoff(1, cfg), time.Duration(0))
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), time.Second, "quick", func(context.Context) error { return nil })
	require.NoError(t, err)

	err = WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return ctx.Err()
	})
	require.ErrorIs(t, err, apperrors.ErrTimeout)

	sentinel := errors.New("boom")
	err = WithTimeout(context.Background(), 0, "direct", func(context.Context) error { return sentinel })
	require.ErrorIs(t, err, sentinel)
}

func TestWithTimeoutParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithTimeout(ctx, time.Second, "op", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBreakerOpensAndRecovers(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker("redis", 2, time.Minute)
	b.now = func() time.Time { return now }
	fail := errors.New("refused")

	assert.ErrorIs(t, b.Execute(func() error { return fail }), fail)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Execute(func() error { return fail }), fail)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	b := NewBreaker("redis", 1, time.Second)
	b.now = func() time.Time { return now }
	fail := errors.New("refused")

	_ = b.Execute(func() error { return fail })
	require.Equal(t, StateOpen, b.State())

	now = now.Add(time.Second)
	_ = b.Execute(func() error { return fail })
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(func() error { return nil }), ErrCircuitOpen)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(7).String())
}
