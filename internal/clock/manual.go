package clock

import (
	"sync"
	"time"
)

// Manual is a clock that only moves when Advance is called.
// Callbacks fire synchronously inside Advance, in due-time order
// (ties broken by scheduling order).
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	pending []*scheduled
}

type scheduled struct {
	at  time.Time
	seq int
	fn  func()
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	m.seq++
	m.pending = append(m.pending, &scheduled{at: m.now.Add(d), seq: m.seq, fn: fn})
	m.mu.Unlock()
}

// Advance moves the clock forward by d, firing every callback that falls due
// on the way. Callbacks scheduled by a firing callback also fire if they are
// due before the target time.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := -1
		for i, p := range m.pending {
			if p.at.After(target) {
				continue
			}
			if next < 0 || p.at.Before(m.pending[next].at) ||
				(p.at.Equal(m.pending[next].at) && p.seq < m.pending[next].seq) {
				next = i
			}
		}
		if next < 0 {
			m.now = target
			m.mu.Unlock()
			return
		}
		p := m.pending[next]
		m.pending = append(m.pending[:next], m.pending[next+1:]...)
		if p.at.After(m.now) {
			m.now = p.at
		}
		m.mu.Unlock()
		p.fn()
	}
}

// Pending reports how many callbacks are waiting to fire.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
