//go:build (windows || darwin || linux) && cgo

package capture

import (
	"fmt"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"clickforge/internal/model"
)

// HookCapture captures global pointer clicks from the shared system
// tap. The pump only filters and forwards into a large buffered
// channel, so the consumer controls pacing.
type HookCapture struct {
	mu      sync.Mutex
	events  chan Event
	stop    chan struct{}
	cancel  func()
	running bool
}

// NewHookCapture returns an idle capture.
func NewHookCapture() *HookCapture {
	return &HookCapture{}
}

// NewSystem returns the global capture backend for this platform.
func NewSystem() (PointerCapture, error) {
	return NewHookCapture(), nil
}

// Start subscribes to the system tap.
func (h *HookCapture) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return fmt.Errorf("capture already running")
	}
	raw, cancel := SystemTap().Subscribe()
	h.events = make(chan Event, 1024)
	h.stop = make(chan struct{})
	h.cancel = cancel
	h.running = true

	go h.pump(raw, h.events, h.stop)
	return nil
}

// Stop unsubscribes and closes the event channel.
func (h *HookCapture) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return fmt.Errorf("capture not running")
	}
	h.running = false
	h.cancel()
	close(h.stop)
	return nil
}

// Events returns the event stream of the current capture.
func (h *HookCapture) Events() <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}

func (h *HookCapture) pump(raw <-chan hook.Event, out chan Event, stop chan struct{}) {
	defer close(out)

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-raw:
			if !ok {
				return
			}
			if ev.Kind != hook.MouseDown {
				continue
			}
			out <- Event{
				X:      int(ev.X),
				Y:      int(ev.Y),
				Button: hookButton(ev.Button),
				Mode:   hookMode(ev.Clicks),
				At:     time.Now(),
			}
		}
	}
}

func hookButton(b uint16) model.Button {
	switch b {
	case 2:
		return model.ButtonRight
	case 3:
		return model.ButtonMiddle
	default:
		return model.ButtonLeft
	}
}

func hookMode(clicks uint16) model.ClickMode {
	switch {
	case clicks >= 3:
		return model.ClickTriple
	case clicks == 2:
		return model.ClickDouble
	default:
		return model.ClickSingle
	}
}
