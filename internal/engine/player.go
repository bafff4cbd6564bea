package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"clickforge/internal/clock"
	"clickforge/internal/injector"
	"clickforge/internal/model"
)

// PlayerOptions wires a Player's collaborators. Zero fields get
// production defaults.
type PlayerOptions struct {
	Clock     clock.Clock
	Injector  injector.Injector
	Logger    *zap.SugaredLogger
	Guard     *Guard
	Listeners *Listeners
}

// Player replays a pattern's click points with their recorded delays on
// a dedicated worker, using the same absolute-time discipline as the
// scheduler so long patterns do not drift.
type Player struct {
	clk       clock.Clock
	inj       injector.Injector
	log       *zap.SugaredLogger
	guard     *Guard
	listeners *Listeners

	mu      sync.Mutex
	state   State
	paused  atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
	session *Session
}

// NewPlayer returns an idle player.
func NewPlayer(opts PlayerOptions) *Player {
	if opts.Clock == nil {
		opts.Clock = clock.NewReal()
	}
	if opts.Injector == nil {
		opts.Injector = injector.New()
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

	return &Player{
		clk:       opts.Clock,
		inj:       opts.Injector,
		log:       opts.Logger,
		guard:     opts.Guard,
		listeners: opts.Listeners,
		state:     StateIdle,
	}
}

// Play snapshots the pattern and starts playback. Mutations of the
// stored pattern after Play do not affect the in-flight run. An empty
// pattern completes immediately with zero injections and one completion
// notification, even with loop set. Returns false if the player is not
// Idle or another engine holds the injection guard.
func (p *Player) Play(pattern model.Pattern, loop bool) bool {
	p.mu.Lock()
	if p.state != StateIdle {
		p.mu.Unlock()
		p.log.Debugw("engine: play rejected", "state", p.state)
		return false
	}
	if !p.guard.TryAcquire(guardPlayer) {
		p.mu.Unlock()
		p.log.Infow("engine: play rejected, injector busy", "holder", p.guard.Holder())
		return false
	}

	snapshot := pattern.Clone()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.session = newSession(p.clk.Now())
	p.state = StatePlaying
	p.paused.Store(false)
	done := p.done
	p.mu.Unlock()

	p.log.Infow("engine: playback started",
		"session", p.session.ID, "pattern", snapshot.Name,
		"steps", len(snapshot.ClickPoints), "loop", loop)
	p.listeners.stateChanged(StatePlaying)

	go p.run(ctx, snapshot, loop, done)
	return true
}

// Stop transitions to Idle from Playing or Paused, discarding remaining
// steps. It returns after the worker has terminated: no click is
// injected once Stop returns. Returns false if already Idle.
func (p *Player) Stop() bool {
	p.mu.Lock()
	if p.state == StateIdle {
		p.mu.Unlock()
		return false
	}
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done
	return true
}

// Pause freezes the step cursor without losing position.
func (p *Player) Pause() bool {
	p.mu.Lock()
	if p.state != StatePlaying {
		p.mu.Unlock()
		return false
	}
	p.state = StatePaused
	p.paused.Store(true)
	p.mu.Unlock()

	p.listeners.stateChanged(StatePaused)
	return true
}

// Resume unfreezes a paused playback.
func (p *Player) Resume() bool {
	p.mu.Lock()
	if p.state != StatePaused {
		p.mu.Unlock()
		return false
	}
	p.state = StatePlaying
	p.paused.Store(false)
	p.mu.Unlock()

	p.listeners.stateChanged(StatePlaying)
	return true
}

// State returns the current player state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Session returns the current or last playback session, or nil before
// the first Play.
func (p *Player) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *Player) run(ctx context.Context, pattern model.Pattern, loop bool, done chan struct{}) {
	session := p.session
	defer func() {
		p.guard.Release(guardPlayer)
		p.mu.Lock()
		p.state = StateIdle
		p.paused.Store(false)
		p.mu.Unlock()
		close(done)
		// Completion (or cancellation) is reported exactly once.
		p.log.Infow("engine: playback finished",
			"session", session.ID, "clicks", session.Clicks())
		p.listeners.stateChanged(StateIdle)
	}()

	total := len(pattern.ClickPoints)
	if total == 0 {
		return
	}

	next := p.clk.Now()
	for {
		for i, cp := range pattern.ClickPoints {
			if err := p.awaitStep(ctx, &next, cp.DelayMs); err != nil {
				return
			}

			step := i + 1
			if err := p.inj.Click(cp.X, cp.Y, cp.Button, cp.Mode); err != nil {
				session.failures.Add(1)
				p.log.Warnw("engine: playback injection failed",
					"step", step, "err", err)
				session.step.Store(int64(step))
				p.listeners.progress(step, total)
				continue
			}

			session.step.Store(int64(step))
			p.listeners.progress(step, total)
			session.clicks.Add(1)
			p.listeners.clickPerformed()
		}

		if !loop {
			return
		}
		// The wrap to the first point is not a pause point: its recorded
		// delay is honored on every pass.
	}
}

// awaitStep sleeps until the step's absolute deadline, honoring pause
// (paused time does not accrue toward the delay) and re-parking if a
// pause arrives mid-sleep, so no step fires while paused. A late wake-up
// is absorbed by realigning the schedule rather than bursting.
func (p *Player) awaitStep(ctx context.Context, next *time.Time, delayMs int64) error {
	delayApplied := false
	for {
		pausedFor, err := p.waitWhilePaused(ctx)
		if err != nil {
			return err
		}
		*next = next.Add(pausedFor)
		if !delayApplied {
			*next = next.Add(time.Duration(delayMs) * time.Millisecond)
			delayApplied = true
		}

		now := p.clk.Now()
		if next.After(now) {
			if err := p.clk.Sleep(ctx, next.Sub(now)); err != nil {
				return err
			}
		} else {
			*next = now
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.paused.Load() {
			continue
		}
		return nil
	}
}

func (p *Player) waitWhilePaused(ctx context.Context) (time.Duration, error) {
	if !p.paused.Load() {
		return 0, ctx.Err()
	}
	start := p.clk.Now()
	for p.paused.Load() {
		if err := p.clk.Sleep(ctx, pauseQuantum); err != nil {
			return 0, err
		}
	}
	return p.clk.Now().Sub(start), nil
}
