package engine

import (
	"fmt"
	"sync"
	"time"
)

// testListener records every notification in arrival order.
type testListener struct {
	mu     sync.Mutex
	clicks int
	states []State
	steps  [][2]int
	seq    []string
}

func (l *testListener) OnClickPerformed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clicks++
	l.seq = append(l.seq, "click")
}

func (l *testListener) OnStateChanged(state State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, state)
	l.seq = append(l.seq, "state:"+string(state))
}

func (l *testListener) OnProgress(current, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, [2]int{current, total})
	l.seq = append(l.seq, fmt.Sprintf("progress:%d/%d", current, total))
}

func (l *testListener) clickCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.clicks
}

func (l *testListener) stateLog() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]State(nil), l.states...)
}

func (l *testListener) progressLog() [][2]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][2]int(nil), l.steps...)
}

func (l *testListener) sequence() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.seq...)
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
