//go:build !((windows || darwin || linux) && cgo)

package capture

import "fmt"

// NewSystem returns the global capture backend for this platform.
func NewSystem() (PointerCapture, error) {
	return nil, fmt.Errorf("global pointer capture not supported on this platform")
}
