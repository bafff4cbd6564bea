// Package metrics maintains a bounded sliding window of click-rate
// samples and derives measured throughput figures from it.
package metrics

import (
	"sync"
	"time"
)

// MaxSamples is the capacity of the sample ring. The oldest sample is
// evicted when a new one would exceed it.
const MaxSamples = 100

// Sample is one rate observation. Samples are never mutated after
// creation.
type Sample struct {
	// Timestamp is a monotonic reading taken when the sample was recorded.
	Timestamp time.Time `json:"timestamp"`

	// TargetRate is the configured CPS at the time of the sample.
	TargetRate float64 `json:"target_rate"`

	// ActualRate is the measured CPS over the sample window.
	ActualRate float64 `json:"actual_rate"`

	// ResourceGauge is scaled resource usage, 0-10000 = 0-100.00%.
	ResourceGauge int `json:"resource_gauge"`
}

// Monitor is a bounded FIFO ring of samples. Safe for concurrent use;
// the scheduler worker writes, everyone else reads copies.
type Monitor struct {
	mu      sync.Mutex
	samples []Sample
}

// NewMonitor returns an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{samples: make([]Sample, 0, MaxSamples)}
}

// Record appends a sample, evicting the single oldest when the ring is
// full.
func (m *Monitor) Record(ts time.Time, targetRate, actualRate float64, resourceGauge int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.samples) >= MaxSamples {
		copy(m.samples, m.samples[1:])
		m.samples = m.samples[:MaxSamples-1]
	}
	m.samples = append(m.samples, Sample{
		Timestamp:     ts,
		TargetRate:    targetRate,
		ActualRate:    actualRate,
		ResourceGauge: resourceGauge,
	})
}

// Snapshot returns an independent, oldest-first copy of the ring. The
// caller's view can never mutate the monitor's state.
func (m *Monitor) Snapshot() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// Len returns the current number of retained samples.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}

// Clear empties the ring immediately. Session click totals are tracked
// by the engine, not here, and are unaffected.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = m.samples[:0]
}

// Latest returns the most recent sample. The second return is false
// when no samples have been recorded yet.
func (m *Monitor) Latest() (Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.samples) == 0 {
		return Sample{}, false
	}
	return m.samples[len(m.samples)-1], true
}

// LatestRate returns the most recent actual rate, or 0 if no samples
// have been recorded yet.
func (m *Monitor) LatestRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.samples) == 0 {
		return 0
	}
	return m.samples[len(m.samples)-1].ActualRate
}

// PeakRate returns the highest actual rate across retained samples, or 0
// when empty.
func (m *Monitor) PeakRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var peak float64
	for _, s := range m.samples {
		if s.ActualRate > peak {
			peak = s.ActualRate
		}
	}
	return peak
}

// Accuracy returns the mean actual/target ratio across retained samples
// as a percentage, or 0 when empty. Samples with a zero target are
// skipped.
func (m *Monitor) Accuracy() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum float64
	var n int
	for _, s := range m.samples {
		if s.TargetRate <= 0 {
			continue
		}
		sum += s.ActualRate / s.TargetRate
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}
