package model

// ClickPoint is the fundamental unit of both live clicking and recorded
// patterns: an absolute position, the delay to wait before clicking it,
// and the button/mode to use. Immutable once created.
type ClickPoint struct {
	X       int       `json:"x"`
	Y       int       `json:"y"`
	DelayMs int64     `json:"delay"`
	Button  Button    `json:"mouseButton"`
	Mode    ClickMode `json:"clickType"`
}

// Pattern is a named, ordered sequence of click points. Insertion order
// is playback order.
type Pattern struct {
	Name        string       `json:"name"`
	Looping     bool         `json:"looping"`
	ClickPoints []ClickPoint `json:"clickPoints"`
}

// Clone returns an independent copy of the pattern. Players snapshot the
// pattern at playback start so later mutations of the stored pattern
// cannot corrupt an in-flight playback.
func (p Pattern) Clone() Pattern {
	out := Pattern{
		Name:    p.Name,
		Looping: p.Looping,
	}
	if len(p.ClickPoints) > 0 {
		out.ClickPoints = make([]ClickPoint, len(p.ClickPoints))
		copy(out.ClickPoints, p.ClickPoints)
	}
	return out
}

// Empty reports whether the pattern has no points. Playing an empty
// pattern is a no-op, not an error.
func (p Pattern) Empty() bool {
	return len(p.ClickPoints) == 0
}

// TotalDurationMs returns the sum of all point delays for one pass.
func (p Pattern) TotalDurationMs() int64 {
	var total int64
	for _, cp := range p.ClickPoints {
		total += cp.DelayMs
	}
	return total
}
