package ratelimit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type countingFetcher struct{ calls atomic.Int32 }

func (c *countingFetcher) Name() string { return "counting" }
func (c *countingFetcher) Fetch(_ context.Context, _ string) (decimal.Decimal, error) {
	c.calls.Add(1)
	return decimal.NewFromInt(1), nil
}

func TestTokenBucket_BurstThenBlocks(t *testing.T) {
	f := &countingFetcher{}
	tb := &TokenBucketFetcher{F: f, TB: NewTokenBucket(0.001, 2)}

	for i := 0; i < 2; i++ {
		if _, err := tb.Fetch(t.Context(), "TSLA"); err != nil {
			t.Fatalf("burst call %d: %v", i, err)
		}
	}
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err := tb.Fetch(ctx, "TSLA")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded once the bucket is empty, got %v", err)
	}
	if got := f.calls.Load(); got != 2 {
		t.Fatalf("want 2 upstream calls, got %d", got)
	}
}

func TestMinInterval_WaitsBetweenCalls(t *testing.T) {
	f := &countingFetcher{}
	m := &MinInterval{F: f, Interval: 30 * time.Millisecond}

	start := time.Now()
	if _, err := m.Fetch(t.Context(), "TSLA"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Fetch(t.Context(), "TSLA"); err != nil {
		t.Fatal(err)
	}
	if el := time.Since(start); el < 30*time.Millisecond {
		t.Fatalf("second call returned after %s, want >= 30ms", el)
	}
}

func TestWrap(t *testing.T) {
	f := &countingFetcher{}
	if _, ok := Wrap(f, 60, 0, 0).(*TokenBucketFetcher); !ok {
		t.Fatalf("rpm should select token bucket")
	}
	if _, ok := Wrap(f, 0, 0, time.Second).(*MinInterval); !ok {
		t.Fatalf("interval should select MinInterval")
	}
	if Wrap(f, 0, 0, 0) != f {
		t.Fatalf("no limits should return the fetcher unchanged")
	}
}
