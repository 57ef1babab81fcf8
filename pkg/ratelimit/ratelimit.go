// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package ratelimit implements fixed-window request limiting keyed by
// client, in process or shared through Redis.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more request for key fits in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Memory is an in-process fixed-window limiter.
type Memory struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count     int
	windowEnd time.Time
}

// sweepThreshold is the bucket count above which expired buckets are
// dropped on the next call.
const sweepThreshold = 4096

// NewMemory allows limit requests per window per key. A non-positive limit
// or window disables limiting.
func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		window:  window,
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow implements Limiter.
func (m *Memory) Allow(_ context.Context, key string) bool {
	if m == nil || key == "" || m.limit <= 0 || m.window <= 0 {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.buckets) > sweepThreshold {
		for k, b := range m.buckets {
			if now.After(b.windowEnd) {
				delete(m.buckets, k)
			}
		}
	}

	b, ok := m.buckets[key]
	if !ok || now.After(b.windowEnd) {
		m.buckets[key] = &bucket{count: 1, windowEnd: now.Add(m.window)}
		return true
	}
	if b.count >= m.limit {
		return false
	}
	b.count++
	return true
}
