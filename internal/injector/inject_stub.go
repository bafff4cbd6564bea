//go:build !windows && !((darwin || linux) && cgo)

package injector

import (
	"fmt"

	"clickforge/internal/model"
)

// stubInjector is the fallback for platforms without an injection
// backend.
type stubInjector struct{}

func newPlatform() Injector {
	return &stubInjector{}
}

func (*stubInjector) Click(x, y int, button model.Button, mode model.ClickMode) error {
	return fmt.Errorf("pointer injection not supported on this platform")
}

// CursorPosition returns the origin on platforms without a backend.
func CursorPosition() (int, int) {
	return 0, 0
}
