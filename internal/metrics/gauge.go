package metrics

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// ResourceGauge reports host CPU usage scaled to 0-10000 (= 0-100.00%).
// gopsutil's percent call blocks for its sampling window, so the gauge
// polls on its own goroutine and the scheduler reads the cached value
// without ever stalling a tick.
type ResourceGauge struct {
	mu      sync.RWMutex
	current int
	stop    chan struct{}
	once    sync.Once
}

// NewResourceGauge starts a gauge polling at the given interval.
func NewResourceGauge(interval time.Duration) *ResourceGauge {
	if interval <= 0 {
		interval = time.Second
	}
	g := &ResourceGauge{stop: make(chan struct{})}
	go g.loop(interval)
	return g
}

// Current returns the last observed usage, 0-10000.
func (g *ResourceGauge) Current() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Close stops the polling goroutine.
func (g *ResourceGauge) Close() {
	g.once.Do(func() { close(g.stop) })
}

func (g *ResourceGauge) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			// Non-blocking read since the previous call; 0 interval makes
			// gopsutil diff against its last snapshot.
			percents, err := cpu.Percent(0, false)
			if err != nil || len(percents) == 0 {
				continue
			}
			v := int(percents[0] * 100)
			if v < 0 {
				v = 0
			}
			if v > 10000 {
				v = 10000
			}
			g.mu.Lock()
			g.current = v
			g.mu.Unlock()
		}
	}
}
