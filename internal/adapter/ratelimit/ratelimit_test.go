package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/ratelimit"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLimiter_UnconfiguredProviderPasses(t *testing.T) {
	logger, _ := zap.NewProduction()
	l := ratelimit.New(logger)

	assert.NoError(t, l.Acquire(context.Background(), "unknown"))
}

func TestLimiter_BurstThenBlocked(t *testing.T) {
	logger, _ := zap.NewProduction()
	l := ratelimit.New(logger)
	l.Configure("slow", time.Hour, 2)

	ctx := context.Background()
	assert.NoError(t, l.Acquire(ctx, "slow"))
	assert.NoError(t, l.Acquire(ctx, "slow"))

	// Budget exhausted: the next slot is an hour away, far past the deadline.
	deadlineCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := l.Acquire(deadlineCtx, "slow")
	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
}

func TestLimiter_IndependentBuckets(t *testing.T) {
	logger, _ := zap.NewProduction()
	l := ratelimit.New(logger)
	l.Configure("a", time.Hour, 1)
	l.Configure("b", time.Hour, 1)

	ctx := context.Background()
	assert.NoError(t, l.Acquire(ctx, "a"))
	assert.NoError(t, l.Acquire(ctx, "b"))

	deadlineCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Acquire(deadlineCtx, "a"), domain.ErrRateLimitExceeded)
}

func TestLimiter_ZeroIntervalIsUnlimited(t *testing.T) {
	logger, _ := zap.NewProduction()
	l := ratelimit.New(logger)
	l.Configure("fast", 0, 1)

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		assert.NoError(t, l.Acquire(ctx, "fast"))
	}
}

func TestLimiter_ReconfigureReplacesBucket(t *testing.T) {
	logger, _ := zap.NewProduction()
	l := ratelimit.New(logger)
	l.Configure("p", time.Hour, 1)

	ctx := context.Background()
	assert.NoError(t, l.Acquire(ctx, "p"))

	l.Configure("p", 0, 1)
	assert.NoError(t, l.Acquire(ctx, "p"))
}
