package injector

import (
	"sync"
	"time"

	"clickforge/internal/model"
)

// RecordedClick is one call observed by a Recorder.
type RecordedClick struct {
	X, Y   int
	Button model.Button
	Mode   model.ClickMode
	At     time.Time
}

// Recorder is an Injector that captures calls instead of delivering
// them. Used by engine tests and by dry-run mode. FailNext can be armed
// to simulate a transient OS-level injection failure.
type Recorder struct {
	mu       sync.Mutex
	clicks   []RecordedClick
	failNext int
	err      error
}

// NewRecorder returns an empty recording injector.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Click records the call. Returns the armed error while failure
// injection is active.
func (r *Recorder) Click(x, y int, button model.Button, mode model.ClickMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failNext > 0 {
		r.failNext--
		return r.err
	}
	r.clicks = append(r.clicks, RecordedClick{
		X: x, Y: y, Button: button, Mode: mode, At: time.Now(),
	})
	return nil
}

// FailNext makes the next n Click calls return err without recording.
func (r *Recorder) FailNext(n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = n
	r.err = err
}

// Clicks returns a copy of the recorded calls in order.
func (r *Recorder) Clicks() []RecordedClick {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedClick, len(r.clicks))
	copy(out, r.clicks)
	return out
}

// Count returns the number of recorded calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clicks)
}
