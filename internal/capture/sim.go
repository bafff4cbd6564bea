package capture

import (
	"fmt"
	"sync"
)

// Sim is a channel-fed PointerCapture for tests and headless use. Emit
// feeds synthetic events while the capture is running.
type Sim struct {
	mu      sync.Mutex
	events  chan Event
	running bool
}

// NewSim returns an idle simulated capture.
func NewSim() *Sim {
	return &Sim{}
}

// Start begins accepting events.
func (s *Sim) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("capture already running")
	}
	s.events = make(chan Event, 1024)
	s.running = true
	return nil
}

// Stop closes the event channel.
func (s *Sim) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return fmt.Errorf("capture not running")
	}
	s.running = false
	close(s.events)
	return nil
}

// Events returns the current event stream.
func (s *Sim) Events() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// Emit injects a synthetic event into the stream. Returns false if the
// capture is not running.
func (s *Sim) Emit(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	s.events <- ev
	return true
}
