//go:build (darwin || linux) && cgo

package injector

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"clickforge/internal/model"
)

// robotInjector delivers clicks through robotgo, which wraps the native
// event APIs on macOS (CGEvent) and Linux (X11).
type robotInjector struct{}

func newPlatform() Injector {
	return &robotInjector{}
}

// CursorPosition returns the current pointer location.
func CursorPosition() (int, int) {
	return robotgo.Location()
}

// Click moves the cursor and clicks. robotgo's double-click flag covers
// the double case natively; triple is a double plus one more press, the
// same sequence the OS toolkits count as a triple click.
func (r *robotInjector) Click(x, y int, button model.Button, mode model.ClickMode) error {
	name, err := buttonName(button)
	if err != nil {
		return err
	}

	robotgo.Move(x, y)
	robotgo.MilliSleep(2)

	switch mode {
	case model.ClickDouble:
		robotgo.Click(name, true)
	case model.ClickTriple:
		robotgo.Click(name, true)
		robotgo.MilliSleep(30)
		robotgo.Click(name, false)
	default:
		robotgo.Click(name, false)
	}
	return nil
}

func buttonName(button model.Button) (string, error) {
	switch button {
	case model.ButtonLeft:
		return "left", nil
	case model.ButtonRight:
		return "right", nil
	case model.ButtonMiddle:
		return "center", nil
	default:
		return "", fmt.Errorf("unknown button: %s", button)
	}
}
