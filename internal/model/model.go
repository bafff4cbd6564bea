// Package model contains the core data types shared by the clicker engine,
// storage, and API layers.
package model

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft   Button = "LEFT"
	ButtonMiddle Button = "MIDDLE"
	ButtonRight  Button = "RIGHT"
)

// ClickMode identifies how many physical clicks one action produces.
type ClickMode string

const (
	ClickSingle ClickMode = "SINGLE"
	ClickDouble ClickMode = "DOUBLE"
	ClickTriple ClickMode = "TRIPLE"
)

// Presses returns the number of down/up pairs a mode produces.
func (m ClickMode) Presses() int {
	switch m {
	case ClickDouble:
		return 2
	case ClickTriple:
		return 3
	default:
		return 1
	}
}

// Valid reports whether b is a known button value.
func (b Button) Valid() bool {
	switch b {
	case ButtonLeft, ButtonMiddle, ButtonRight:
		return true
	}
	return false
}

// Valid reports whether m is a known click mode value.
func (m ClickMode) Valid() bool {
	switch m {
	case ClickSingle, ClickDouble, ClickTriple:
		return true
	}
	return false
}

// Clamp limits for ClickConfig fields.
const (
	MinCPS = 0.1
	MaxCPS = 500.0

	MinRandomFactor = 0.0
	MaxRandomFactor = 1.0

	MinMovementRadius = 0
	MaxMovementRadius = 20
)

// ClickConfig describes one clicking session. The engine receives a value
// snapshot per operation and never mutates it; out-of-range fields are
// clamped by the setters, never rejected.
type ClickConfig struct {
	// CPS is the target rate in clicks per second.
	CPS float64 `json:"cps"`

	// Mode selects single, double or triple clicking.
	Mode ClickMode `json:"click_type"`

	// Button selects the mouse button to press.
	Button Button `json:"mouse_button"`

	// RandomizeInterval perturbs the tick interval when set.
	RandomizeInterval bool `json:"randomize_interval"`

	// RandomFactor is the fraction of the base interval that may vary.
	RandomFactor float64 `json:"random_factor"`

	// RandomMovement perturbs the click position when set.
	RandomMovement bool `json:"random_movement"`

	// MovementRadius is the maximum per-axis offset in pixels.
	MovementRadius int `json:"movement_radius"`
}

// DefaultClickConfig returns a config with sensible defaults.
func DefaultClickConfig() ClickConfig {
	return ClickConfig{
		CPS:            10.0,
		Mode:           ClickSingle,
		Button:         ButtonLeft,
		RandomFactor:   0.2,
		MovementRadius: 5,
	}
}

// SetCPS sets the target rate, clamped to [MinCPS, MaxCPS].
func (c *ClickConfig) SetCPS(cps float64) {
	c.CPS = clampFloat(cps, MinCPS, MaxCPS)
}

// SetRandomFactor sets the randomization factor, clamped to [0, 1].
func (c *ClickConfig) SetRandomFactor(f float64) {
	c.RandomFactor = clampFloat(f, MinRandomFactor, MaxRandomFactor)
}

// SetMovementRadius sets the movement radius, clamped to [0, 20] pixels.
func (c *ClickConfig) SetMovementRadius(r int) {
	if r < MinMovementRadius {
		r = MinMovementRadius
	}
	if r > MaxMovementRadius {
		r = MaxMovementRadius
	}
	c.MovementRadius = r
}

// Normalize clamps every field to its documented range in place and
// replaces unknown enum values with defaults. Bad input is never an error.
func (c *ClickConfig) Normalize() {
	c.SetCPS(c.CPS)
	c.SetRandomFactor(c.RandomFactor)
	c.SetMovementRadius(c.MovementRadius)
	if !c.Mode.Valid() {
		c.Mode = ClickSingle
	}
	if !c.Button.Valid() {
		c.Button = ButtonLeft
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
