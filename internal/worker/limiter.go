package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// Limiter paces outgoing calls with one token bucket per operation, so a
// burst of verifications cannot starve leaderboard reads.
// A nil *Limiter never blocks.
type Limiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewLimiter allows perSecond calls per operation. Zero or less disables pacing.
func NewLimiter(perSecond float64, burst int) *Limiter {
	l := &Limiter{
		limit:   rate.Inf,
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
	if perSecond > 0 {
		l.limit = rate.Limit(perSecond)
	}
	if l.burst <= 0 {
		l.burst = defaultBurst
	}
	return l
}

// Wait blocks until op may run or ctx is done
func (l *Limiter) Wait(ctx context.Context, op string) error {
	if l == nil {
		return nil
	}
	if err := l.bucket(op).Wait(ctx); err != nil {
		return fmt.Errorf("pace %s: %w", op, err)
	}
	return nil
}

// Override gives op its own rate. A non-positive burst keeps the default.
func (l *Limiter) Override(op string, perSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	l.mu.Lock()
	l.buckets[op] = rate.NewLimiter(rate.Limit(perSecond), burst)
	l.mu.Unlock()
}

func (l *Limiter) bucket(op string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.buckets[op]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[op] = b
	}
	return b
}
