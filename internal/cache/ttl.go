// Package cache holds the time-bounded in-memory cache of the ledger report.
package cache

import (
	"context"
	"sync"
	"time"
)

// Result describes how a Get was answered.
type Result string

const (
	Hit       Result = "hit"       // fresh entry served
	Refreshed Result = "refreshed" // fetched and stored
	Stale     Result = "stale"     // fetch failed, previous entry served
	Empty     Result = "empty"     // fetch failed, nothing cached
)

// FetchFunc loads a new value.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// TTL caches one value for a fixed time. Staleness is checked lazily on
// read; nothing expires in the background. The whole check, fetch and store
// sequence runs under one lock, so concurrent readers never fetch twice.
type TTL[T any] struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	value  T
	stamp  time.Time
	filled bool
}

// New creates a TTL cache. A nil now uses time.Now.
func New[T any](ttl time.Duration, now func() time.Time) *TTL[T] {
	if now == nil {
		now = time.Now
	}
	return &TTL[T]{ttl: ttl, now: now}
}

// Get returns the cached value when it is fresh and forceRefresh is false.
// Otherwise it calls fetch. A failed fetch keeps the previous entry and its
// timestamp and serves it; with nothing cached it returns the zero value.
// The fetch error is returned in both failure cases.
func (c *TTL[T]) Get(ctx context.Context, forceRefresh bool, fetch FetchFunc[T]) (T, Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.fresh() {
		return c.value, Hit, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		if c.filled {
			return c.value, Stale, err
		}
		var zero T
		return zero, Empty, err
	}
	c.value = v
	c.stamp = c.now()
	c.filled = true
	return v, Refreshed, nil
}

// Age reports how old the entry is and whether there is one.
func (c *TTL[T]) Age() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filled {
		return 0, false
	}
	return c.now().Sub(c.stamp), true
}

func (c *TTL[T]) fresh() bool {
	return c.filled && c.now().Sub(c.stamp) < c.ttl
}
