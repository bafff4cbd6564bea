package clock

import (
	"context"
	"sync"
	"time"
)

// Manual is a test clock: time only moves when Advance is called. Sleeps
// block until the clock reaches their deadline or their context is
// cancelled, which lets tests step a worker loop tick by tick.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*waiter
}

type waiter struct {
	deadline time.Time
	done     chan struct{}
}

// NewManual returns a manual clock starting at an arbitrary fixed epoch.
func NewManual() *Manual {
	return &Manual{now: time.Unix(1_700_000_000, 0)}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Sleep blocks until the clock has advanced past d or ctx is done.
func (m *Manual) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	m.mu.Lock()
	w := &waiter{deadline: m.now.Add(d), done: make(chan struct{})}
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		m.remove(w)
		return ctx.Err()
	case <-w.done:
		return nil
	}
}

// Advance moves the clock forward and wakes every sleeper whose deadline
// has been reached.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	remaining := m.waiters[:0]
	var due []*waiter
	for _, w := range m.waiters {
		if !m.now.Before(w.deadline) {
			due = append(due, w)
		} else {
			remaining = append(remaining, w)
		}
	}
	m.waiters = remaining
	m.mu.Unlock()

	for _, w := range due {
		close(w.done)
	}
}

// Sleepers returns the number of goroutines currently blocked in Sleep.
// Tests use it to wait for the worker to reach its next suspension point.
func (m *Manual) Sleepers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

// BlockUntilSleepers polls until at least n goroutines are blocked in
// Sleep or the timeout expires. Returns false on timeout.
func (m *Manual) BlockUntilSleepers(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.Sleepers() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return m.Sleepers() >= n
}

func (m *Manual) remove(target *waiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.waiters {
		if w == target {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return
		}
	}
}
