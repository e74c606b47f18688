package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pricesignal/internal/provider"
)

// MinInterval wraps a fetcher and enforces a minimum time between calls.
// Concurrent calls will wait until the interval has elapsed since the last call,
// or return early if the context is canceled.
type MinInterval struct {
	F        provider.Fetcher
	Interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

func (m *MinInterval) Name() string { return m.F.Name() }

func (m *MinInterval) Fetch(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if m.Interval > 0 {
		m.mu.Lock()
		wait := time.Until(m.last.Add(m.Interval))
		m.mu.Unlock()
		if wait > 0 {
			t := time.NewTimer(wait)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return decimal.Zero, ctx.Err()
			case <-t.C:
			}
		}
	}
	v, err := m.F.Fetch(ctx, ticker)
	if m.Interval > 0 {
		m.mu.Lock()
		m.last = time.Now()
		m.mu.Unlock()
	}
	return v, err
}

// Wrap applies the configured limit to f: a token bucket when rpm > 0,
// otherwise a minimum interval when one is set, otherwise f unchanged.
func Wrap(f provider.Fetcher, rpm, burst int, minInterval time.Duration) provider.Fetcher {
	if rpm > 0 {
		if burst <= 0 {
			burst = 1
		}
		return &TokenBucketFetcher{F: f, TB: NewTokenBucket(float64(rpm)/60.0, burst)}
	}
	if minInterval > 0 {
		return &MinInterval{F: f, Interval: minInterval}
	}
	return f
}
