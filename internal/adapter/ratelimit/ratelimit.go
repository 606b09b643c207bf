package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter is a per-provider token-bucket gate around outbound calls. All
// callers targeting one provider share a single bucket, so the budget holds
// across concurrent reconciliation workers.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Limiter {
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		logger:  logger,
	}
}

// Configure sets the request budget for a provider: burst requests per every
// interval. Reconfiguring replaces the bucket.
func (l *Limiter) Configure(providerID string, every time.Duration, burst int) {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Every(every)
	if every <= 0 {
		limit = rate.Inf
	}

	l.mu.Lock()
	l.buckets[providerID] = rate.NewLimiter(limit, burst)
	l.mu.Unlock()
}

// Acquire blocks until a slot is available, bounded by the context deadline.
// An unconfigured provider is not limited. When the wait would exceed the
// deadline it returns domain.ErrRateLimitExceeded instead of stalling the
// whole reconciliation pass, so the caller can try a fallback provider.
func (l *Limiter) Acquire(ctx context.Context, providerID string) error {
	l.mu.Lock()
	bucket, ok := l.buckets[providerID]
	l.mu.Unlock()

	if !ok {
		return nil
	}

	if err := bucket.Wait(ctx); err != nil {
		l.logger.Debug("rate limit wait aborted",
			zap.String("provider", providerID), zap.Error(err))
		return fmt.Errorf("%w: %s", domain.ErrRateLimitExceeded, providerID)
	}
	return nil
}
