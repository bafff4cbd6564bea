package model

import "testing"

func TestSetCPSClamps(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{10.0, 10.0},
		{0.0, MinCPS},
		{-3.5, MinCPS},
		{500.0, 500.0},
		{9999.0, MaxCPS},
		{0.1, 0.1},
	}

	for _, tc := range cases {
		var c ClickConfig
		c.SetCPS(tc.in)
		if c.CPS != tc.want {
			t.Errorf("SetCPS(%v): want %v, got %v", tc.in, tc.want, c.CPS)
		}
	}
}

func TestSetRandomFactorClamps(t *testing.T) {
	var c ClickConfig
	c.SetRandomFactor(1.7)
	if c.RandomFactor != MaxRandomFactor {
		t.Errorf("want %v, got %v", MaxRandomFactor, c.RandomFactor)
	}
	c.SetRandomFactor(-0.2)
	if c.RandomFactor != MinRandomFactor {
		t.Errorf("want %v, got %v", MinRandomFactor, c.RandomFactor)
	}
}

func TestSetMovementRadiusClamps(t *testing.T) {
	var c ClickConfig
	c.SetMovementRadius(100)
	if c.MovementRadius != MaxMovementRadius {
		t.Errorf("want %d, got %d", MaxMovementRadius, c.MovementRadius)
	}
	c.SetMovementRadius(-1)
	if c.MovementRadius != MinMovementRadius {
		t.Errorf("want %d, got %d", MinMovementRadius, c.MovementRadius)
	}
}

func TestNormalizeRepairsEnums(t *testing.T) {
	c := ClickConfig{CPS: 1000, Mode: "QUAD", Button: "BACK"}
	c.Normalize()

	if c.CPS != MaxCPS {
		t.Errorf("CPS not clamped: got %v", c.CPS)
	}
	if c.Mode != ClickSingle {
		t.Errorf("unknown mode not defaulted: got %q", c.Mode)
	}
	if c.Button != ButtonLeft {
		t.Errorf("unknown button not defaulted: got %q", c.Button)
	}
}

func TestClickModePresses(t *testing.T) {
	if got := ClickSingle.Presses(); got != 1 {
		t.Errorf("single: want 1, got %d", got)
	}
	if got := ClickDouble.Presses(); got != 2 {
		t.Errorf("double: want 2, got %d", got)
	}
	if got := ClickTriple.Presses(); got != 3 {
		t.Errorf("triple: want 3, got %d", got)
	}
}
