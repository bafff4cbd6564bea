package metrics

import (
	"testing"
	"time"
)

func record(m *Monitor, actual float64) {
	m.Record(time.Now(), 10.0, actual, 0)
}

func TestMonitorRetainsAtMostMaxSamples(t *testing.T) {
	m := NewMonitor()

	for i := 0; i < 150; i++ {
		record(m, float64(i))
	}

	snap := m.Snapshot()
	if len(snap) != MaxSamples {
		t.Fatalf("want %d samples, got %d", MaxSamples, len(snap))
	}

	// The most recent 100 survive, oldest-first order preserved.
	for i, s := range snap {
		want := float64(50 + i)
		if s.ActualRate != want {
			t.Fatalf("sample %d: want rate %v, got %v", i, want, s.ActualRate)
		}
	}
}

func TestMonitorSnapshotIsIndependent(t *testing.T) {
	m := NewMonitor()
	record(m, 5.0)

	snap := m.Snapshot()
	snap[0].ActualRate = 999

	if got := m.Snapshot()[0].ActualRate; got != 5.0 {
		t.Errorf("snapshot mutation leaked into monitor: got %v", got)
	}
}

func TestMonitorLatestRate(t *testing.T) {
	m := NewMonitor()
	if got := m.LatestRate(); got != 0 {
		t.Errorf("empty monitor: want 0, got %v", got)
	}

	record(m, 9.5)
	record(m, 10.2)
	if got := m.LatestRate(); got != 10.2 {
		t.Errorf("want 10.2, got %v", got)
	}
}

func TestMonitorPeakRate(t *testing.T) {
	m := NewMonitor()
	record(m, 8.0)
	record(m, 12.5)
	record(m, 10.0)
	if got := m.PeakRate(); got != 12.5 {
		t.Errorf("want 12.5, got %v", got)
	}
}

func TestMonitorAccuracy(t *testing.T) {
	m := NewMonitor()
	if got := m.Accuracy(); got != 0 {
		t.Errorf("empty monitor: want 0, got %v", got)
	}

	m.Record(time.Now(), 10.0, 9.0, 0)
	m.Record(time.Now(), 10.0, 11.0, 0)

	if got := m.Accuracy(); got < 99.9 || got > 100.1 {
		t.Errorf("want ~100, got %v", got)
	}
}

func TestMonitorClear(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < 10; i++ {
		record(m, 1.0)
	}
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("want empty after Clear, got %d", m.Len())
	}
	if got := m.LatestRate(); got != 0 {
		t.Errorf("want 0 after Clear, got %v", got)
	}
}
