//go:build windows

package injector

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"clickforge/internal/model"
)

const (
	inputMouse = 0

	mouseEventLeftDown   = 0x0002
	mouseEventLeftUp     = 0x0004
	mouseEventRightDown  = 0x0008
	mouseEventRightUp    = 0x0010
	mouseEventMiddleDown = 0x0020
	mouseEventMiddleUp   = 0x0040
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetCursorPos = user32.NewProc("GetCursorPos")
)

type winPoint struct {
	X int32
	Y int32
}

// CursorPosition returns the current pointer location.
func CursorPosition() (int, int) {
	var pt winPoint
	if ret, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt))); ret == 0 {
		return 0, 0
	}
	return int(pt.X), int(pt.Y)
}

type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// winInput mirrors the Windows INPUT structure for INPUT_MOUSE. The
// trailing pad keeps the union large enough for KEYBDINPUT on amd64.
type winInput struct {
	Type uint32
	_    uint32
	Mi   mouseInput
	_    [8]byte
}

// winInjector injects clicks through SetCursorPos + SendInput.
type winInjector struct{}

func newPlatform() Injector {
	return &winInjector{}
}

// Click moves the cursor to (x, y) and presses the button once per the
// mode's press count, with a short settle between presses so the OS
// registers double/triple clicks.
func (w *winInjector) Click(x, y int, button model.Button, mode model.ClickMode) error {
	down, up, err := buttonFlags(button)
	if err != nil {
		return err
	}

	if ret, _, callErr := procSetCursorPos.Call(uintptr(x), uintptr(y)); ret == 0 {
		return fmt.Errorf("SetCursorPos(%d, %d): %v", x, y, callErr)
	}
	time.Sleep(2 * time.Millisecond)

	presses := mode.Presses()
	for i := 0; i < presses; i++ {
		if i > 0 {
			time.Sleep(30 * time.Millisecond)
		}
		if err := sendMouse(down); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
		if err := sendMouse(up); err != nil {
			return err
		}
	}
	return nil
}

func sendMouse(flags uint32) error {
	in := winInput{
		Type: inputMouse,
		Mi:   mouseInput{DwFlags: flags},
	}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if ret == 0 {
		return fmt.Errorf("SendInput(flags=%#x): %v", flags, err)
	}
	return nil
}

func buttonFlags(button model.Button) (down, up uint32, err error) {
	switch button {
	case model.ButtonLeft:
		return mouseEventLeftDown, mouseEventLeftUp, nil
	case model.ButtonRight:
		return mouseEventRightDown, mouseEventRightUp, nil
	case model.ButtonMiddle:
		return mouseEventMiddleDown, mouseEventMiddleUp, nil
	default:
		return 0, 0, fmt.Errorf("unknown button: %s", button)
	}
}
