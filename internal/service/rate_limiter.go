package service

import (
	"context"
	"sync"
	"time"
)

// RateLimiter limita la frecuencia de solicitudes por clave (email, IP).
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type memoryRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	hits      map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryRateLimiter crea un rate limiter de ventana deslizante en memoria.
// Las claves sin hits dentro de la ventana se descartan una vez por ventana.
func NewMemoryRateLimiter(window time.Duration, max int) RateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	if now.Sub(l.lastSweep) >= l.window {
		l.sweep(cutoff)
		l.lastSweep = now
	}

	kept := pruneBefore(l.hits[key], cutoff)
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

func (l *memoryRateLimiter) sweep(cutoff time.Time) {
	for key, hits := range l.hits {
		// los hits estan ordenados; basta mirar el ultimo
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

func pruneBefore(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, ts := range hits {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
