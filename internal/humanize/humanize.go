// Package humanize perturbs click timing and position so automated
// clicking is not perfectly mechanical.
package humanize

import (
	"math/rand"
	"sync"
	"time"
)

// MinInterval is the floor applied to every perturbed interval. An
// interval of zero or less would spin the scheduler loop.
const MinInterval = time.Millisecond

// Humanizer owns a seeded random source. It has no other mutable state;
// the same configuration always produces the same distribution, which is
// what the engine tests verify.
type Humanizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a humanizer seeded from the current time.
func New() *Humanizer {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a humanizer with a fixed seed for reproducible tests.
func NewSeeded(seed int64) *Humanizer {
	return &Humanizer{rng: rand.New(rand.NewSource(seed))}
}

// PerturbInterval returns a duration uniformly distributed in
// [base*(1-factor), base*(1+factor)], floored at MinInterval. A factor
// of zero returns base unchanged.
func (h *Humanizer) PerturbInterval(base time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		if base < MinInterval {
			return MinInterval
		}
		return base
	}
	if factor > 1 {
		factor = 1
	}

	h.mu.Lock()
	// Uniform in [-1, 1).
	u := h.rng.Float64()*2 - 1
	h.mu.Unlock()

	perturbed := time.Duration(float64(base) * (1 + factor*u))
	if perturbed < MinInterval {
		return MinInterval
	}
	return perturbed
}

// PerturbPosition returns a position within the square of side 2*radius
// centered on (x, y). Each axis is offset independently and uniformly.
func (h *Humanizer) PerturbPosition(x, y, radius int) (int, int) {
	if radius <= 0 {
		return x, y
	}

	h.mu.Lock()
	dx := h.rng.Intn(2*radius+1) - radius
	dy := h.rng.Intn(2*radius+1) - radius
	h.mu.Unlock()

	return x + dx, y + dy
}
