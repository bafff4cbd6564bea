//go:build !((windows || darwin || linux) && cgo)

package hotkey

import "fmt"

func (m *Manager) startFeed() error {
	return fmt.Errorf("global hotkeys are not supported on this platform")
}
