package config

import (
	"os"
	"path/filepath"
	"testing"

	"clickforge/internal/model"
)

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "settings.json"))
	if err := m.Load(); err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if got := m.Get().Click.CPS; got != 10.0 {
		t.Errorf("want default CPS 10, got %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	m := NewManagerAt(path)

	m.Update(func(c *Config) {
		c.Click.CPS = 25.0
		c.Click.Button = model.ButtonRight
		c.General.APIPort = 9000
	})
	if err := m.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	m2 := NewManagerAt(path)
	if err := m2.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := m2.Get()
	if cfg.Click.CPS != 25.0 || cfg.Click.Button != model.ButtonRight {
		t.Errorf("click config did not round-trip: %+v", cfg.Click)
	}
	if cfg.General.APIPort != 9000 {
		t.Errorf("general config did not round-trip: %+v", cfg.General)
	}
}

func TestSetClampsClickFields(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "settings.json"))

	cfg := m.Get()
	cfg.Click.CPS = 100000
	cfg.Click.RandomFactor = 5
	cfg.Click.MovementRadius = 99
	m.Set(cfg)

	got := m.Get().Click
	if got.CPS != model.MaxCPS {
		t.Errorf("CPS not clamped: %v", got.CPS)
	}
	if got.RandomFactor != model.MaxRandomFactor {
		t.Errorf("factor not clamped: %v", got.RandomFactor)
	}
	if got.MovementRadius != model.MaxMovementRadius {
		t.Errorf("radius not clamped: %v", got.MovementRadius)
	}
}

func TestLoadClampsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	raw := `{"click":{"cps":9999,"click_type":"SINGLE","mouse_button":"LEFT","random_factor":2.5,"movement_radius":50}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManagerAt(path)
	if err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := m.Get().Click
	if got.CPS != model.MaxCPS || got.RandomFactor != model.MaxRandomFactor || got.MovementRadius != model.MaxMovementRadius {
		t.Errorf("file values not clamped: %+v", got)
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewManagerAt(path).Load(); err == nil {
		t.Error("malformed settings must be an error")
	}
}

func TestOnChangedFires(t *testing.T) {
	m := NewManagerAt(filepath.Join(t.TempDir(), "settings.json"))

	var got *Config
	m.SetOnChanged(func(c Config) { got = &c })
	m.Update(func(c *Config) { c.Click.CPS = 42 })

	if got == nil || got.Click.CPS != 42 {
		t.Errorf("onChanged not fired with updated config: %+v", got)
	}
}

func TestPatternDirDefaultsNextToSettings(t *testing.T) {
	dir := t.TempDir()
	m := NewManagerAt(filepath.Join(dir, "settings.json"))
	want := filepath.Join(dir, "patterns")
	if got := m.PatternDir(); got != want {
		t.Errorf("want %q, got %q", want, got)
	}

	m.Update(func(c *Config) { c.General.PatternDir = "/elsewhere" })
	if got := m.PatternDir(); got != "/elsewhere" {
		t.Errorf("override ignored: %q", got)
	}
}
