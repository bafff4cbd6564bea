package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clickforge/internal/clock"
	"clickforge/internal/injector"
	"clickforge/internal/metrics"
	"clickforge/internal/model"
)

func newTestScheduler(t *testing.T) (*Scheduler, *clock.Manual, *injector.Recorder, *testListener) {
	t.Helper()

	clk := clock.NewManual()
	inj := injector.NewRecorder()
	lis := &testListener{}
	listeners := NewListeners()
	listeners.Add(lis)

	s := NewScheduler(SchedulerOptions{
		Clock:     clk,
		Injector:  inj,
		Monitor:   metrics.NewMonitor(),
		Listeners: listeners,
		Position:  func() (int, int) { return 100, 200 },
	})
	return s, clk, inj, lis
}

// steadyConfig is 10 CPS with all randomization off: one tick every 100ms.
func steadyConfig() model.ClickConfig {
	cfg := model.DefaultClickConfig()
	cfg.CPS = 10.0
	cfg.RandomizeInterval = false
	cfg.RandomMovement = false
	return cfg
}

// tick drives the worker through one scheduled click.
func tick(t *testing.T, clk *clock.Manual, d time.Duration) {
	t.Helper()
	require.True(t, clk.BlockUntilSleepers(1, time.Second), "worker never reached its sleep")
	clk.Advance(d)
}

func TestSchedulerTicksAtConfiguredRate(t *testing.T) {
	s, clk, inj, _ := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))
	defer s.Stop()

	for i := 0; i < 10; i++ {
		tick(t, clk, 100*time.Millisecond)
	}

	require.True(t, waitFor(time.Second, func() bool { return inj.Count() == 10 }),
		"want 10 clicks, got %d", inj.Count())

	// 10 clicks over exactly one simulated second: one sample recorded.
	assert.InDelta(t, 10.0, s.MeasuredRate(), 0.01)

	for _, c := range inj.Clicks() {
		assert.Equal(t, 100, c.X)
		assert.Equal(t, 200, c.Y)
		assert.Equal(t, model.ButtonLeft, c.Button)
	}
}

func TestSchedulerMeasuredRateZeroWithoutSamples(t *testing.T) {
	s, _, _, _ := newTestScheduler(t)
	assert.Zero(t, s.MeasuredRate())
}

func TestSchedulerStartWhileRunningIsNoOp(t *testing.T) {
	s, clk, _, _ := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))
	defer s.Stop()

	require.True(t, clk.BlockUntilSleepers(1, time.Second))
	assert.False(t, s.Start(steadyConfig()), "second start must be rejected")
	assert.Equal(t, StateRunning, s.State())
}

func TestSchedulerStartFromPausedRejected(t *testing.T) {
	s, clk, _, _ := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))
	defer s.Stop()

	require.True(t, clk.BlockUntilSleepers(1, time.Second))
	require.True(t, s.Pause())
	assert.False(t, s.Start(steadyConfig()), "start from Paused must be rejected")
}

func TestSchedulerStopIsTerminal(t *testing.T) {
	s, clk, inj, lis := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))

	tick(t, clk, 100*time.Millisecond)
	require.True(t, waitFor(time.Second, func() bool { return inj.Count() == 1 }))

	require.True(t, s.Stop())
	countAtStop := lis.clickCount()

	// The worker has terminated; further time cannot produce clicks.
	clk.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, countAtStop, lis.clickCount(), "click after Stop returned")
	assert.Equal(t, StateStopped, s.State())
	assert.False(t, s.Stop(), "second stop must be a no-op")
}

func TestSchedulerPauseHaltsTicks(t *testing.T) {
	s, clk, inj, _ := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))
	defer s.Stop()

	tick(t, clk, 100*time.Millisecond)
	require.True(t, waitFor(time.Second, func() bool { return inj.Count() == 1 }))

	require.True(t, s.Pause())
	assert.Equal(t, StatePaused, s.State())

	// The worker wakes from its tick sleep, observes the flag, and parks
	// in pause quanta without injecting.
	tick(t, clk, 100*time.Millisecond)
	require.True(t, clk.BlockUntilSleepers(1, time.Second))
	clk.Advance(pauseQuantum)
	require.True(t, clk.BlockUntilSleepers(1, time.Second))
	assert.Equal(t, 1, inj.Count(), "tick fired while paused")

	require.True(t, s.Resume())
	clk.Advance(pauseQuantum)
	tick(t, clk, 200*time.Millisecond)
	require.True(t, waitFor(time.Second, func() bool { return inj.Count() == 2 }),
		"no tick after resume")
}

func TestSchedulerPauseResumeIdempotent(t *testing.T) {
	s, clk, _, _ := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))
	defer s.Stop()
	require.True(t, clk.BlockUntilSleepers(1, time.Second))

	assert.False(t, s.Resume(), "resume while running must be a no-op")
	require.True(t, s.Pause())
	assert.False(t, s.Pause(), "pause while paused must be a no-op")
	require.True(t, s.Resume())
	assert.Equal(t, StateRunning, s.State())
}

func TestSchedulerAbsorbsLateTicksWithoutBurst(t *testing.T) {
	s, clk, inj, _ := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))
	defer s.Stop()

	// Jump a full second past the next 100ms deadline. A catch-up
	// scheduler would fire ~10 clicks; absorbing lateness fires the
	// overdue tick plus the one late follow-up, then realigns.
	tick(t, clk, time.Second)
	require.True(t, clk.BlockUntilSleepers(1, time.Second))

	assert.LessOrEqual(t, inj.Count(), 2, "late ticks caused a click burst")
}

func TestSchedulerInjectionFailureIsNotFatal(t *testing.T) {
	s, clk, inj, lis := newTestScheduler(t)
	inj.FailNext(1, errors.New("os denied"))

	require.True(t, s.Start(steadyConfig()))
	defer s.Stop()

	tick(t, clk, 100*time.Millisecond)
	tick(t, clk, 100*time.Millisecond)

	require.True(t, waitFor(time.Second, func() bool { return inj.Count() == 1 }),
		"scheduling did not continue after a failed injection")
	assert.Equal(t, StateRunning, s.State())
	assert.EqualValues(t, 1, s.Session().Failures())
	assert.Equal(t, 1, lis.clickCount(), "failed injection must not notify listeners")
}

func TestSchedulerClampsConfig(t *testing.T) {
	s, clk, _, _ := newTestScheduler(t)

	cfg := steadyConfig()
	cfg.CPS = 99999 // clamped to 500, never an error
	require.True(t, s.Start(cfg))
	defer s.Stop()
	require.True(t, clk.BlockUntilSleepers(1, time.Second))
	assert.Equal(t, StateRunning, s.State())
}

func TestSchedulerStateNotifications(t *testing.T) {
	s, clk, _, lis := newTestScheduler(t)
	require.True(t, s.Start(steadyConfig()))
	require.True(t, clk.BlockUntilSleepers(1, time.Second))
	require.True(t, s.Pause())
	require.True(t, s.Resume())
	require.True(t, s.Stop())

	assert.Equal(t, []State{StateRunning, StatePaused, StateRunning, StateStopped}, lis.stateLog())
}

// TestSchedulerRealClockRate is the wall-clock scenario: 10 CPS for one
// second lands within one click of the target.
func TestSchedulerRealClockRate(t *testing.T) {
	if testing.Short() {
		t.Skip("wall-clock timing test")
	}

	inj := injector.NewRecorder()
	s := NewScheduler(SchedulerOptions{Injector: inj})

	require.True(t, s.Start(steadyConfig()))
	time.Sleep(1050 * time.Millisecond)
	require.True(t, s.Stop())

	got := inj.Count()
	assert.GreaterOrEqual(t, got, 9, "too few clicks in ~1s: %d", got)
	assert.LessOrEqual(t, got, 11, "too many clicks in ~1s: %d", got)
}
