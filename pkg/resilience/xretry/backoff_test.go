package xretry

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := NewExponentialBackoff(
		WithInitialDelay(10*time.Millisecond),
		WithMaxDelay(100*time.Millisecond),
		WithMultiplier(2),
		WithJitter(0),
	)

	tests := []struct {
		name    string
		attempt int
		want    time.Duration
	}{
		{name: "第一次", attempt: 1, want: 10 * time.Millisecond},
		{name: "第二次", attempt: 2, want: 20 * time.Millisecond},
		{name: "第四次", attempt: 4, want: 80 * time.Millisecond},
		{name: "触及上限", attempt: 5, want: 100 * time.Millisecond},
		{name: "非法次数按第一次", attempt: 0, want: 10 * time.Millisecond},
		{name: "溢出", attempt: math.MaxInt32, want: 100 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.NextDelay(tt.attempt))
		})
	}
}

func TestExponentialBackoff_Jitter(t *testing.T) {
	b := NewExponentialBackoff(WithInitialDelay(100*time.Millisecond), WithJitter(0.5), WithMaxDelay(time.Second))
	for range 100 {
		d := b.NextDelay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestExponentialBackoff_IgnoresInvalidOptions(t *testing.T) {
	b := NewExponentialBackoff(WithInitialDelay(-1), WithMaxDelay(0), WithMultiplier(0.5), WithJitter(7), nil)
	assert.Equal(t, 50*time.Millisecond, b.initialDelay)
	assert.Equal(t, 2*time.Second, b.maxDelay)
	assert.InDelta(t, 2.0, b.multiplier, 0)
	assert.InDelta(t, 1.0, b.jitter, 0)

	// 上限小于初始值时抬到初始值
	b = NewExponentialBackoff(WithInitialDelay(time.Second), WithMaxDelay(time.Millisecond))
	assert.Equal(t, time.Second, b.maxDelay)
}

func TestFixedAndNoBackoff(t *testing.T) {
	assert.Equal(t, time.Second, NewFixedBackoff(time.Second).NextDelay(9))
	assert.Equal(t, time.Duration(0), NewFixedBackoff(-time.Second).NextDelay(1))
	assert.Equal(t, time.Duration(0), NewNoBackoff().NextDelay(3))
}

func TestFixedRetryPolicy(t *testing.T) {
	p := NewFixedRetry(3)
	ctx := context.Background()
	err := errors.New("x")

	assert.Equal(t, 3, p.MaxAttempts())
	assert.True(t, p.ShouldRetry(ctx, 1, err))
	assert.True(t, p.ShouldRetry(ctx, 2, err))
	assert.False(t, p.ShouldRetry(ctx, 3, err))
	assert.False(t, p.ShouldRetry(ctx, 1, NewPermanentError(err)))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, p.ShouldRetry(canceled, 1, err))

	assert.Equal(t, 1, NewFixedRetry(0).MaxAttempts())
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(errors.New("x")))
	assert.False(t, IsRetryable(NewPermanentError(errors.New("x"))))
	assert.False(t, IsRetryable(errors.Join(errors.New("a"), NewPermanentError(nil))))
	assert.Equal(t, "permanent error", NewPermanentError(nil).Error())
}
