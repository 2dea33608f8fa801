// Package cache stores rendered calendar responses so repeated lookups
// skip recomputation. Redis is used when configured; otherwise an
// in-process map with expiry.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a process-local Cache holding at most maxEntries keys.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// NewMemory returns an empty in-memory cache. A maxEntries <= 0 means
// no limit.
func NewMemory(maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// StartSweeper removes expired entries every interval until ctx is
// cancelled.
func (m *Memory) StartSweeper(ctx context.Context, interval time.Duration, log *slog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(); n > 0 {
					log.Debug("cache sweep", slog.Int("removed", n), slog.Int("remaining", m.Len()))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Sweep deletes every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now())
}

func (m *Memory) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if now := m.now(); e.expired(now) {
		m.deleteIfExpired(key, now)
		return nil, ErrMiss
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// deleteIfExpired re-checks under the write lock, since a Set may have
// replaced the entry after Get released its read lock.
func (m *Memory) deleteIfExpired(key string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.entries[key]; ok && cur.expired(now) {
		delete(m.entries, key)
	}
}

// Set stores value under key. A ttl <= 0 keeps the entry until Close.
// When the cache is full, expired entries are dropped first and then an
// arbitrary live one.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		if m.sweepLocked(now) == 0 {
			for k := range m.entries {
				delete(m.entries, k)
				break
			}
		}
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
