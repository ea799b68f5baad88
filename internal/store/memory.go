// internal/store/memory.go
//
// In-memory session store.
// Live line and card games are held here between requests, keyed by ID.
//
// Characteristics:
//   - Generic over the session type; one store per game kind.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Every Get refreshes the entry's last-used time; Sweep evicts entries
//     idle for longer than a cutoff and hands them to an optional closer.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown or evicted IDs.
var ErrNotFound = errors.New("not found")

type entry[T any] struct {
	v    T
	used time.Time
}

// Memory is a map-based store of live sessions.
type Memory[T any] struct {
	mu      sync.RWMutex
	items   map[string]*entry[T]
	now     func() time.Time
	onEvict func(id string, v T)
}

// NewMemory constructs an empty store. onEvict, if non-nil, is called for
// every entry removed by Delete or Sweep.
func NewMemory[T any](onEvict func(id string, v T)) *Memory[T] {
	return &Memory[T]{items: make(map[string]*entry[T]), now: time.Now, onEvict: onEvict}
}

// Save adds or replaces the value under id.
func (m *Memory[T]) Save(ctx context.Context, id string, v T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = &entry[T]{v: v, used: m.now()}
	return nil
}

// Get looks up id and marks it as used.
func (m *Memory[T]) Get(ctx context.Context, id string) (T, error) {
	m.mu.RLock()
	e, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	m.mu.Lock()
	e.used = m.now()
	m.mu.Unlock()
	return e.v, nil
}

// Touch marks id as used without reading it. It reports whether id exists.
func (m *Memory[T]) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[id]
	if ok {
		e.used = m.now()
	}
	return ok
}

// Delete removes id. Deleting a missing ID returns ErrNotFound.
func (m *Memory[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.items[id]
	delete(m.items, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if m.onEvict != nil {
		m.onEvict(id, e.v)
	}
	return nil
}

// Len reports the number of stored sessions.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Sweep evicts entries unused for longer than idle and returns how many.
func (m *Memory[T]) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	type evicted struct {
		id string
		v  T
	}
	var out []evicted

	m.mu.Lock()
	for id, e := range m.items {
		if e.used.Before(cutoff) {
			out = append(out, evicted{id, e.v})
			delete(m.items, id)
		}
	}
	m.mu.Unlock()

	if m.onEvict != nil {
		for _, e := range out {
			m.onEvict(e.id, e.v)
		}
	}
	return len(out)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory[T]) RunSweeper(ctx context.Context, interval, idle time.Duration, logf func(n int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(idle); n > 0 && logf != nil {
				logf(n)
			}
		}
	}
}
