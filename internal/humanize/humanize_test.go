package humanize

import (
	"testing"
	"time"
)

func TestPerturbIntervalWithinBounds(t *testing.T) {
	h := NewSeeded(1)
	base := 100 * time.Millisecond

	for _, factor := range []float64{0.1, 0.5, 1.0} {
		lo := time.Duration(float64(base) * (1 - factor))
		hi := time.Duration(float64(base) * (1 + factor))
		if lo < MinInterval {
			lo = MinInterval
		}

		for i := 0; i < 10000; i++ {
			got := h.PerturbInterval(base, factor)
			if got < lo || got > hi {
				t.Fatalf("factor %v: %v outside [%v, %v]", factor, got, lo, hi)
			}
		}
	}
}

func TestPerturbIntervalRangeApproachesBounds(t *testing.T) {
	h := NewSeeded(42)
	base := 100 * time.Millisecond
	factor := 0.5

	min, max := base, base
	for i := 0; i < 20000; i++ {
		got := h.PerturbInterval(base, factor)
		if got < min {
			min = got
		}
		if got > max {
			max = got
		}
	}

	// Empirical range should cover most of the theoretical [50ms, 150ms].
	if min > 55*time.Millisecond {
		t.Errorf("empirical min %v too far from theoretical 50ms", min)
	}
	if max < 145*time.Millisecond {
		t.Errorf("empirical max %v too far from theoretical 150ms", max)
	}
}

func TestPerturbIntervalZeroFactorIsIdentity(t *testing.T) {
	h := NewSeeded(7)
	base := 37 * time.Millisecond
	for i := 0; i < 100; i++ {
		if got := h.PerturbInterval(base, 0); got != base {
			t.Fatalf("want %v, got %v", base, got)
		}
	}
}

func TestPerturbIntervalFloorsAtMinimum(t *testing.T) {
	h := NewSeeded(3)
	for i := 0; i < 1000; i++ {
		if got := h.PerturbInterval(time.Millisecond, 1.0); got < MinInterval {
			t.Fatalf("interval %v below floor %v", got, MinInterval)
		}
	}
	if got := h.PerturbInterval(0, 0); got != MinInterval {
		t.Errorf("zero base: want %v, got %v", MinInterval, got)
	}
}

func TestPerturbPositionWithinSquare(t *testing.T) {
	h := NewSeeded(9)
	const cx, cy, radius = 500, 300, 15

	seenEdgeX, seenEdgeY := false, false
	for i := 0; i < 20000; i++ {
		x, y := h.PerturbPosition(cx, cy, radius)
		if x < cx-radius || x > cx+radius {
			t.Fatalf("x=%d outside ±%d of %d", x, radius, cx)
		}
		if y < cy-radius || y > cy+radius {
			t.Fatalf("y=%d outside ±%d of %d", y, radius, cy)
		}
		if x == cx-radius || x == cx+radius {
			seenEdgeX = true
		}
		if y == cy-radius || y == cy+radius {
			seenEdgeY = true
		}
	}

	// Uniform distribution over 31 values should hit the edges many times
	// in 20k draws.
	if !seenEdgeX || !seenEdgeY {
		t.Error("distribution never reached the square's edge")
	}
}

func TestPerturbPositionZeroRadius(t *testing.T) {
	h := NewSeeded(11)
	x, y := h.PerturbPosition(10, 20, 0)
	if x != 10 || y != 20 {
		t.Errorf("zero radius must be identity, got (%d, %d)", x, y)
	}
}
