// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/moodmix/internal/logging"
	"github.com/tomtom215/moodmix/internal/metrics"
)

const memoryCacheType = "memory"

type entry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// MemoryStore is a thread-safe in-process Store.
//
// Expired entries are removed lazily on Get and in bulk by Cleanup. Run
// RunJanitor (directly or under a supervisor) to clean up periodically.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry

	statsMu sync.Mutex
	stats   Stats

	now func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		stats:   Stats{LastCleanup: time.Now()},
		now:     time.Now,
	}
}

// Get returns a copy of the value stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		m.recordMiss()
		return nil, false, nil
	}

	if e.expired(m.now()) {
		m.mu.Lock()
		// Re-check under the write lock; a Set may have replaced it.
		if cur, ok := m.entries[key]; ok && cur.expired(m.now()) {
			delete(m.entries, key)
			m.recordEviction(1)
		}
		m.mu.Unlock()
		m.recordMiss()
		return nil, false, nil
	}

	m.recordHit()
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

// Set stores a copy of value under key.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	e := entry{data: data}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	size := len(m.entries)
	m.mu.Unlock()

	m.setTotalKeys(size)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.entries[key]
	delete(m.entries, key)
	size := len(m.entries)
	m.mu.Unlock()

	if existed {
		m.recordEviction(1)
	}
	m.setTotalKeys(size)
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Cleanup removes every expired entry and returns how many were removed.
func (m *MemoryStore) Cleanup() int {
	now := m.now()

	m.mu.Lock()
	removed := 0
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	size := len(m.entries)
	m.mu.Unlock()

	m.statsMu.Lock()
	m.stats.Evictions += int64(removed)
	m.stats.TotalKeys = int64(size)
	m.stats.LastCleanup = now
	m.statsMu.Unlock()

	metrics.CacheSize.WithLabelValues(memoryCacheType).Set(float64(size))
	return removed
}

// RunJanitor runs Cleanup every interval until ctx is canceled.
func (m *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed := m.Cleanup()
			stats := m.GetStats()
			logging.Debug().
				Int("removed", removed).
				Int64("keys", stats.TotalKeys).
				Int64("evictions", stats.Evictions).
				Float64("hit_rate", m.HitRate()).
				Msg("Cache janitor sweep")
		}
	}
}

// GetStats returns a snapshot of the store statistics.
func (m *MemoryStore) GetStats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

// HitRate returns the hit percentage (0-100).
func (m *MemoryStore) HitRate() float64 {
	stats := m.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (m *MemoryStore) recordHit() {
	m.statsMu.Lock()
	m.stats.Hits++
	m.statsMu.Unlock()
}

func (m *MemoryStore) recordMiss() {
	m.statsMu.Lock()
	m.stats.Misses++
	m.statsMu.Unlock()
}

func (m *MemoryStore) recordEviction(n int64) {
	m.statsMu.Lock()
	m.stats.Evictions += n
	m.statsMu.Unlock()
}

func (m *MemoryStore) setTotalKeys(n int) {
	m.statsMu.Lock()
	m.stats.TotalKeys = int64(n)
	m.statsMu.Unlock()
	metrics.CacheSize.WithLabelValues(memoryCacheType).Set(float64(n))
}
