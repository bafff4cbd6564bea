package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"clickforge/internal/clock"
	"clickforge/internal/humanize"
	"clickforge/internal/injector"
	"clickforge/internal/metrics"
	"clickforge/internal/model"
)

// pauseQuantum bounds how long a paused worker sleeps between checks of
// the pause flag, so stop and resume are never delayed by more than one
// quantum.
const pauseQuantum = 16 * time.Millisecond

const (
	guardScheduler = "scheduler"
	guardPlayer    = "player"
)

// Gauge supplies the resource-usage reading attached to rate samples.
type Gauge interface {
	Current() int
}

// SchedulerOptions wires a Scheduler's collaborators. Zero fields get
// production defaults; tests inject a manual clock and a recording
// injector.
type SchedulerOptions struct {
	Clock     clock.Clock
	Humanizer *humanize.Humanizer
	Injector  injector.Injector
	Monitor   *metrics.Monitor
	Gauge     Gauge
	Logger    *zap.SugaredLogger
	Guard     *Guard
	Listeners *Listeners

	// Position supplies the base click position for each tick. Defaults
	// to the origin; the caller typically wires the live cursor position.
	Position func() (x, y int)
}

// Scheduler fires clicks at a configured rate on a dedicated worker
// goroutine. State transitions are serialized; the worker is the only
// writer of session state.
type Scheduler struct {
	clk       clock.Clock
	hum       *humanize.Humanizer
	inj       injector.Injector
	monitor   *metrics.Monitor
	gauge     Gauge
	log       *zap.SugaredLogger
	guard     *Guard
	listeners *Listeners
	position  func() (int, int)

	mu      sync.Mutex
	state   State
	paused  atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	session *Session
}

// NewScheduler returns a stopped scheduler.
func NewScheduler(opts SchedulerOptions) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.NewReal()
	}
	if opts.Humanizer == nil {
		opts.Humanizer = humanize.New()
	}
	if opts.Injector == nil {
		opts.Injector = injector.New()
	}
	if opts.Monitor == nil {
		opts.Monitor = metrics.NewMonitor()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Guard == nil {
		opts.Guard = NewGuard()
	}
	if opts.Listeners == nil {
		opts.Listeners = NewListeners()
	}
	if opts.Position == nil {
		opts.Position = func() (int, int) { return 0, 0 }
	}

	return &Scheduler{
		clk:       opts.Clock,
		hum:       opts.Humanizer,
		inj:       opts.Injector,
		monitor:   opts.Monitor,
		gauge:     opts.Gauge,
		log:       opts.Logger,
		guard:     opts.Guard,
		listeners: opts.Listeners,
		position:  opts.Position,
		state:     StateStopped,
	}
}

// Start transitions Stopped -> Running and begins the tick loop on a
// dedicated worker. Returns false without side effects if the scheduler
// is not Stopped or another engine holds the injection guard.
func (s *Scheduler) Start(cfg model.ClickConfig) bool {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		s.log.Debugw("engine: start rejected", "state", s.state)
		return false
	}
	if !s.guard.TryAcquire(guardScheduler) {
		s.mu.Unlock()
		s.log.Infow("engine: start rejected, injector busy", "holder", s.guard.Holder())
		return false
	}

	cfg.Normalize()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.session = newSession(s.clk.Now())
	s.state = StateRunning
	s.paused.Store(false)
	done := s.done
	s.mu.Unlock()

	s.log.Infow("engine: clicker started",
		"session", s.session.ID, "cps", cfg.CPS, "button", cfg.Button, "mode", cfg.Mode)
	s.listeners.stateChanged(StateRunning)

	go s.run(ctx, cfg, done)
	return true
}

// Stop transitions Running or Paused -> Stopped. It returns after the
// worker has terminated: no click is injected once Stop returns. Returns
// false if already Stopped.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return false
	}
	s.state = StateStopped
	s.paused.Store(false)
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.log.Infow("engine: clicker stopped", "clicks", s.Session().Clicks())
	s.listeners.stateChanged(StateStopped)
	return true
}

// Pause transitions Running -> Paused. While paused no ticks fire and no
// time accrues toward the next click. No-op from any other state.
func (s *Scheduler) Pause() bool {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return false
	}
	s.state = StatePaused
	s.paused.Store(true)
	s.mu.Unlock()

	s.listeners.stateChanged(StatePaused)
	return true
}

// Resume transitions Paused -> Running. No-op from any other state.
func (s *Scheduler) Resume() bool {
	s.mu.Lock()
	if s.state != StatePaused {
		s.mu.Unlock()
		return false
	}
	s.state = StateRunning
	s.paused.Store(false)
	s.mu.Unlock()

	s.listeners.stateChanged(StateRunning)
	return true
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Session returns the current or last session, or nil before the first
// Start.
func (s *Scheduler) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// MeasuredRate returns the most recent measured rate in clicks per
// second, or 0 before any sample has been recorded.
func (s *Scheduler) MeasuredRate() float64 {
	return s.monitor.LatestRate()
}

// Monitor exposes the performance monitor feeding the stats surface.
func (s *Scheduler) Monitor() *metrics.Monitor {
	return s.monitor
}

func (s *Scheduler) run(ctx context.Context, cfg model.ClickConfig, done chan struct{}) {
	defer func() {
		s.guard.Release(guardScheduler)
		close(done)
	}()

	base := time.Duration(float64(time.Second) / cfg.CPS)
	next := s.clk.Now()
	lastSample := next
	var clicksAtSample int64

	for {
		pausedFor, err := s.waitWhilePaused(ctx)
		if err != nil {
			return
		}
		// Time spent paused does not accrue toward the next click.
		next = next.Add(pausedFor)

		interval := base
		if cfg.RandomizeInterval {
			interval = s.hum.PerturbInterval(base, cfg.RandomFactor)
		}
		next = next.Add(interval)

		now := s.clk.Now()
		if next.After(now) {
			if err := s.clk.Sleep(ctx, next.Sub(now)); err != nil {
				return
			}
		} else {
			// Late tick: absorb the lag instead of bursting to catch up.
			next = now
		}
		if ctx.Err() != nil {
			return
		}
		if s.paused.Load() {
			continue
		}

		x, y := s.position()
		if cfg.RandomMovement {
			x, y = s.hum.PerturbPosition(x, y, cfg.MovementRadius)
		}

		if err := s.inj.Click(x, y, cfg.Button, cfg.Mode); err != nil {
			// Single injection failures are not fatal; keep scheduling.
			s.session.failures.Add(1)
			s.log.Warnw("engine: injection failed", "err", err, "x", x, "y", y)
		} else {
			s.session.clicks.Add(1)
			s.listeners.clickPerformed()
		}

		if sampleAt := s.clk.Now(); sampleAt.Sub(lastSample) >= time.Second {
			total := s.session.Clicks()
			actual := float64(total-clicksAtSample) / sampleAt.Sub(lastSample).Seconds()
			s.monitor.Record(sampleAt, cfg.CPS, actual, s.gaugeValue())
			lastSample = sampleAt
			clicksAtSample = total
		}
	}
}

// waitWhilePaused blocks in sub-tick increments while the pause flag is
// set and returns how long it waited.
func (s *Scheduler) waitWhilePaused(ctx context.Context) (time.Duration, error) {
	if !s.paused.Load() {
		return 0, ctx.Err()
	}
	start := s.clk.Now()
	for s.paused.Load() {
		if err := s.clk.Sleep(ctx, pauseQuantum); err != nil {
			return 0, err
		}
	}
	return s.clk.Now().Sub(start), nil
}

func (s *Scheduler) gaugeValue() int {
	if s.gauge == nil {
		return 0
	}
	return s.gauge.Current()
}
