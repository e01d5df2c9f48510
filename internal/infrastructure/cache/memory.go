package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process implementation of both store contracts. It serves
// tests and redis-less development; expiry is checked lazily on access.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	counters map[string]memoryCounter

	// now is swappable so tests can advance time.
	now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		entries:  make(map[string]memoryEntry),
		counters: make(map[string]memoryCounter),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Test use only.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Memory) Put(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Take(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	delete(m.entries, key)
	if m.now().After(entry.expiresAt) {
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) TakeIfEquals(_ context.Context, key, expected string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return false, nil
	}
	if entry.value != expected {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

func (m *Memory) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counter, ok := m.counters[key]
	if !ok || m.now().After(counter.expiresAt) {
		counter = memoryCounter{count: 0, expiresAt: m.now().Add(window)}
	}
	counter.count++
	m.counters[key] = counter
	return counter.count, nil
}

var (
	_ ChallengeStore = (*Memory)(nil)
	_ CounterStore   = (*Memory)(nil)
)
