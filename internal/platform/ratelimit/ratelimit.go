// Copyright (c) 2026 TradeCraft. All rights reserved.

/*
Package ratelimit implements per-endpoint fixed-window request limiting on a
pluggable counter store.

The original deployment kept counters in a per-process map, which silently
stops being a limit the moment a second instance starts. The store interface
here is keyed by (identifier, window) and the production implementation backs
it with Redis (INCR + EXPIRE) so the budget holds across instances and
survives restarts. The in-memory store remains for tests and single-node
development.
*/
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farhetkoun/tradecraft/internal/platform/constants"
)

// # Counter Store Contract

// CounterStore counts events per key within a rolling fixed window.
type CounterStore interface {
	// Incr increments the counter for key, starting a new window of the given
	// length when the key is fresh. It returns the post-increment count and
	// the time remaining until the window resets.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

// # Limiter

// Result describes the outcome of a limit check.
type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter applies fixed-window budgets using a [CounterStore].
type Limiter struct {
	store CounterStore
}

// New constructs a [Limiter] on top of the given store.
func New(store CounterStore) *Limiter {
	return &Limiter{store: store}
}

/*
Allow records one request against the (key, window) budget.

Store failures fail OPEN: a broken counter backend degrades protection, not
availability. The caller is expected to log the returned error.
*/
func (limiter *Limiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (Result, error) {
	count, resetIn, err := limiter.store.Incr(ctx, constants.RedisPrefixRateLimit+key, window)
	if err != nil {
		return Result{Allowed: true, Remaining: limit}, fmt.Errorf("ratelimit_store_incr_failed: %w", err)
	}

	if count > limit {
		return Result{Allowed: false, Remaining: 0, RetryAfter: resetIn}, nil
	}

	return Result{Allowed: true, Remaining: limit - count, RetryAfter: resetIn}, nil
}

// # Redis Store

// RedisCounterStore implements [CounterStore] on Redis with INCR + EXPIRE.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore creates a Redis-backed counter store.
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Incr implements [CounterStore].
func (store *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := store.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis_counter_incr_failed: %w", err)
	}

	// First hit in the window owns setting the expiry.
	if count == 1 {
		if err := store.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis_counter_expire_failed: %w", err)
		}
		return count, window, nil
	}

	resetIn, err := store.client.TTL(ctx, key).Result()
	if err != nil || resetIn < 0 {
		// TTL can be missing if the key expired between INCR and TTL; treat
		// the window as freshly reset.
		resetIn = window
	}

	return count, resetIn, nil
}

// # Memory Store

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

// MemoryCounterStore implements [CounterStore] with an in-process map.
//
// # Limitation
//
// Counters are per-process and reset on restart. Not suitable for
// multi-instance deployments; use [RedisCounterStore] in production.
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryCounterStore creates an in-process counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Incr implements [CounterStore].
func (store *MemoryCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := store.now()
	entry, found := store.entries[key]
	if !found || now.After(entry.resetAt) || now.Equal(entry.resetAt) {
		entry = &memoryEntry{count: 0, resetAt: now.Add(window)}
		store.entries[key] = entry
	}

	entry.count++
	return entry.count, entry.resetAt.Sub(now), nil
}
