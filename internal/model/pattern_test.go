package model

import "testing"

func TestPatternCloneIsIndependent(t *testing.T) {
	original := Pattern{
		Name:    "test",
		Looping: true,
		ClickPoints: []ClickPoint{
			{X: 1, Y: 2, DelayMs: 100, Button: ButtonLeft, Mode: ClickSingle},
			{X: 3, Y: 4, DelayMs: 200, Button: ButtonRight, Mode: ClickDouble},
		},
	}

	clone := original.Clone()
	original.ClickPoints[0].X = 999

	if clone.ClickPoints[0].X != 1 {
		t.Errorf("clone shares backing array with original: got X=%d", clone.ClickPoints[0].X)
	}
	if clone.Name != "test" || !clone.Looping {
		t.Errorf("clone lost metadata: %+v", clone)
	}
}

func TestPatternEmpty(t *testing.T) {
	if !(Pattern{}).Empty() {
		t.Error("zero pattern should be empty")
	}
	p := Pattern{ClickPoints: []ClickPoint{{}}}
	if p.Empty() {
		t.Error("pattern with one point should not be empty")
	}
}

func TestPatternTotalDuration(t *testing.T) {
	p := Pattern{ClickPoints: []ClickPoint{
		{DelayMs: 50}, {DelayMs: 150}, {DelayMs: 0},
	}}
	if got := p.TotalDurationMs(); got != 200 {
		t.Errorf("want 200, got %d", got)
	}
}
