// Package injector delivers simulated pointer clicks to the OS. It is
// the single exclusive resource of the engine: only one worker may call
// it at a time, enforced by the engine's injection guard.
package injector

import (
	"clickforge/internal/model"
)

// Injector injects one pointer action at an absolute screen position.
// A nil error means the click was delivered. Implementations must be
// safe to call from the engine worker goroutine and must report failure
// through the error, never by panicking: a single failed injection is
// not fatal to the engine.
type Injector interface {
	Click(x, y int, button model.Button, mode model.ClickMode) error
}

// New returns the platform injector. Each supported platform provides
// its own implementation behind build tags.
func New() Injector {
	return newPlatform()
}
