package engine

import "sync"

// Guard serializes access to the injection collaborator. The scheduler
// and player each try to acquire it before starting their worker; the
// second starter is rejected and the active engine continues unaffected.
type Guard struct {
	mu     sync.Mutex
	holder string
}

// NewGuard returns an unheld guard.
func NewGuard() *Guard {
	return &Guard{}
}

// TryAcquire claims the guard for who. Returns false if another holder
// is active.
func (g *Guard) TryAcquire(who string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder != "" {
		return false
	}
	g.holder = who
	return true
}

// Release frees the guard if who currently holds it.
func (g *Guard) Release(who string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder == who {
		g.holder = ""
	}
}

// Holder returns the current holder name, or "" when free.
func (g *Guard) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder
}
