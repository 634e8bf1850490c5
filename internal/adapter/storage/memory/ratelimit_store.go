package memory

import (
	"context"
	"sync"
	"time"

	"ethereum-wallet/internal/core/ports"

	"golang.org/x/time/rate"
)

const minSweepKeys = 1024

// RateLimitStore is an in-process token bucket per key. Each bucket holds
// limit tokens and refills the whole allowance over one window, so a burst
// of limit requests is followed by one request every window/limit.
//
// Counters are not shared between processes.
type RateLimitStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	sweepAt int
	now     func() time.Time
}

type bucket struct {
	lim    *rate.Limiter
	window time.Duration
	seen   time.Time
}

// NewRateLimitStore creates an empty store.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		buckets: make(map[string]*bucket),
		sweepAt: minSweepKeys,
		now:     time.Now,
	}
}

// Allow takes one token from the bucket for key.
func (s *RateLimitStore) Allow(_ context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if limit < 1 {
		return &ports.RateLimitResult{Allowed: false, Limit: limit, ResetAt: now.Add(window).Unix()}, nil
	}

	b, ok := s.buckets[key]
	if !ok {
		if len(s.buckets) >= s.sweepAt {
			s.evictIdle(now)
		}
		interval := window / time.Duration(limit)
		b = &bucket{lim: rate.NewLimiter(rate.Every(interval), int(limit)), window: window}
		s.buckets[key] = b
	}
	b.seen = now

	allowed := b.lim.AllowN(now, 1)
	tokens := b.lim.TokensAt(now)

	reset := now
	if tokens < 1 {
		interval := b.window / time.Duration(limit)
		reset = now.Add(time.Duration((1 - tokens) * float64(interval)))
	}

	return &ports.RateLimitResult{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: int64(max(tokens, 0)),
		ResetAt:   reset.Add(time.Second - 1).Truncate(time.Second).Unix(),
	}, nil
}

// evictIdle drops buckets untouched for a full window; they have refilled
// and are indistinguishable from new ones. Caller holds s.mu.
func (s *RateLimitStore) evictIdle(now time.Time) {
	for key, b := range s.buckets {
		if now.Sub(b.seen) >= b.window {
			delete(s.buckets, key)
		}
	}
	s.sweepAt = max(2*len(s.buckets), minSweepKeys)
}

// Len returns the number of tracked keys.
func (s *RateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}
