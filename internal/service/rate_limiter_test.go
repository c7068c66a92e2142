package service

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimiterAllow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(time.Minute, 2).(*memoryRateLimiter)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if !l.Allow(ctx, "k") || !l.Allow(ctx, "k") {
		t.Fatalf("expected first two hits allowed")
	}
	if l.Allow(ctx, "k") {
		t.Fatalf("expected third hit denied")
	}
	if !l.Allow(ctx, "other") {
		t.Fatalf("expected independent keys")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, "k") {
		t.Fatalf("expected allow after window elapsed")
	}
}

func TestMemoryRateLimiter_DropsIdleKeys(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryRateLimiter(time.Minute, 5).(*memoryRateLimiter)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		l.Allow(ctx, ip)
	}
	if len(l.hits) != 3 {
		t.Fatalf("expected 3 tracked keys, got %d", len(l.hits))
	}

	now = now.Add(2 * time.Minute)
	l.Allow(ctx, "10.0.0.9")
	if len(l.hits) != 1 {
		t.Fatalf("expected idle keys dropped, got %d keys: %v", len(l.hits), l.hits)
	}
	if _, ok := l.hits["10.0.0.9"]; !ok {
		t.Fatalf("expected the active key kept")
	}
}
