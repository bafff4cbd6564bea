package engine

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session holds the counters of one clicking, recording or playback run.
// Created at start, discarded at the natural or forced end.
type Session struct {
	ID        string
	StartedAt time.Time

	clicks   atomic.Int64
	failures atomic.Int64
	step     atomic.Int64
}

func newSession(startedAt time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: startedAt,
	}
}

// Clicks returns the number of clicks injected this session.
func (s *Session) Clicks() int64 {
	return s.clicks.Load()
}

// Failures returns the number of injection failures this session.
func (s *Session) Failures() int64 {
	return s.failures.Load()
}

// Step returns the current playback step index.
func (s *Session) Step() int64 {
	return s.step.Load()
}
