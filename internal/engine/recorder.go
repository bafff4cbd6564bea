package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"clickforge/internal/capture"
	"clickforge/internal/clock"
	"clickforge/internal/model"
)

// RecorderOptions wires a Recorder's collaborators.
type RecorderOptions struct {
	Capture   capture.PointerCapture
	Clock     clock.Clock
	Logger    *zap.SugaredLogger
	Listeners *Listeners
}

// Recorder captures a live pointer-event stream into a pattern. The
// drain goroutine is decoupled from any display layer: capture is
// authoritative and events are never dropped or reordered.
type Recorder struct {
	cap       capture.PointerCapture
	clk       clock.Clock
	log       *zap.SugaredLogger
	listeners *Listeners

	mu      sync.Mutex
	state   State
	name    string
	points  []model.ClickPoint
	last    time.Time
	drained chan struct{}
	session *Session
}

// NewRecorder returns an idle recorder.
func NewRecorder(opts RecorderOptions) *Recorder {
	if opts.Clock == nil {
		opts.Clock = clock.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Listeners == nil {
		opts.Listeners = NewListeners()
	}
	return &Recorder{
		cap:       opts.Capture,
		clk:       opts.Clock,
		log:       opts.Logger,
		listeners: opts.Listeners,
		state:     StateIdle,
	}
}

// StartRecording begins capturing pointer actions under the given
// pattern name. Each captured action is stamped with the gap since the
// previous one; the first point always carries a delay of 0. Returns
// false if a recording is already active, the name is empty, or the
// capture backend fails to start.
func (r *Recorder) StartRecording(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording {
		r.log.Debugw("engine: recording already active", "name", r.name)
		return false
	}
	if name == "" {
		r.log.Debug("engine: recording rejected, empty pattern name")
		return false
	}
	if r.cap == nil {
		r.log.Warn("engine: recording rejected, no capture backend")
		return false
	}
	if err := r.cap.Start(); err != nil {
		r.log.Warnw("engine: capture start failed", "err", err)
		return false
	}

	r.state = StateRecording
	r.name = name
	r.points = nil
	r.last = time.Time{}
	r.drained = make(chan struct{})
	r.session = newSession(r.clk.Now())

	go r.drain(r.cap.Events(), r.drained)

	r.log.Infow("engine: recording started", "session", r.session.ID, "name", name)
	r.listeners.stateChanged(StateRecording)
	return true
}

// StopRecording finalizes and returns the captured pattern, which may be
// empty. Returns a zero pattern if no recording is active.
func (r *Recorder) StopRecording() model.Pattern {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return model.Pattern{}
	}
	r.state = StateIdle
	drained := r.drained
	name := r.name
	if err := r.cap.Stop(); err != nil {
		r.log.Warnw("engine: capture stop failed", "err", err)
	}
	r.mu.Unlock()

	// The capture channel is closed by Stop; wait until every buffered
	// event has been folded into the pattern.
	<-drained

	r.mu.Lock()
	pattern := model.Pattern{
		Name:        name,
		ClickPoints: append([]model.ClickPoint(nil), r.points...),
	}
	r.points = nil
	r.mu.Unlock()

	r.log.Infow("engine: recording stopped", "name", name, "points", len(pattern.ClickPoints))
	r.listeners.stateChanged(StateIdle)
	return pattern
}

// State returns the current recorder state.
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PointCount returns the number of points captured so far.
func (r *Recorder) PointCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.points)
}

func (r *Recorder) drain(events <-chan capture.Event, drained chan struct{}) {
	defer close(drained)

	for ev := range events {
		r.mu.Lock()
		var delay int64
		if !r.last.IsZero() {
			delay = ev.At.Sub(r.last).Milliseconds()
			if delay < 0 {
				delay = 0
			}
		}
		r.last = ev.At
		r.points = append(r.points, model.ClickPoint{
			X:       ev.X,
			Y:       ev.Y,
			DelayMs: delay,
			Button:  ev.Button,
			Mode:    ev.Mode,
		})
		r.mu.Unlock()
	}
}
