// Package capture provides the live pointer-event stream the recorder
// consumes. Capture is authoritative: events are delivered in order and
// must not be dropped under back-pressure from display layers.
package capture

import (
	"time"

	"clickforge/internal/model"
)

// Event is one observed pointer action.
type Event struct {
	X      int
	Y      int
	Button model.Button
	Mode   model.ClickMode
	At     time.Time
}

// PointerCapture is the interface for capturing live pointer actions.
type PointerCapture interface {
	// Start begins capturing. Events are delivered on the Events channel
	// until Stop is called.
	Start() error
	// Stop ends capturing and closes the Events channel.
	Stop() error
	// Events returns the ordered event stream.
	Events() <-chan Event
}
