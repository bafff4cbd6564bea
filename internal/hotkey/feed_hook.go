//go:build (windows || darwin || linux) && cgo

package hotkey

import (
	"fmt"
	"strings"

	hook "github.com/robotn/gohook"

	"clickforge/internal/capture"
)

// startFeed subscribes to the shared system tap and folds keyboard
// events into the matcher state.
func (m *Manager) startFeed() error {
	m.mu.Lock()
	if m.stopFeed != nil {
		m.mu.Unlock()
		return fmt.Errorf("hotkey feed already running")
	}
	raw, cancel := capture.SystemTap().Subscribe()
	m.stopFeed = cancel
	m.mu.Unlock()

	go m.pump(raw)
	return nil
}

func (m *Manager) pump(raw <-chan hook.Event) {
	for ev := range raw {
		switch ev.Kind {
		case hook.KeyDown, hook.KeyHold:
			if name := keyName(ev); name != "" {
				m.UpdateState(name, true)
			}
		case hook.KeyUp:
			if name := keyName(ev); name != "" {
				m.UpdateState(name, false)
			}
		}
	}
}

// keyName maps a raw keyboard event to the combo vocabulary: modifier
// names without left/right distinction, single characters upper-cased.
func keyName(ev hook.Event) string {
	name := hook.RawcodetoKeychar(ev.Rawcode)
	if name == "" && ev.Keychar != 0 && ev.Keychar != 65535 {
		name = string(ev.Keychar)
	}

	name = strings.ToUpper(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "LEFT ")
	name = strings.TrimPrefix(name, "RIGHT ")

	switch name {
	case "CONTROL":
		return "CTRL"
	case "OPTION":
		return "ALT"
	case "COMMAND", "META", "SUPER":
		return "CMD"
	}
	return name
}
