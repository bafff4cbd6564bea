package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"clickforge/internal/model"
)

func samplePattern() model.Pattern {
	return model.Pattern{
		Name:    "demo",
		Looping: true,
		ClickPoints: []model.ClickPoint{
			{X: 100, Y: 200, DelayMs: 0, Button: model.ButtonLeft, Mode: model.ClickSingle},
			{X: 300, Y: 400, DelayMs: 250, Button: model.ButtonRight, Mode: model.ClickDouble},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := NewStore(t.TempDir())

	if err := st.Save(samplePattern()); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := st.Load("demo")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := samplePattern()
	if got.Name != want.Name || got.Looping != want.Looping {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if len(got.ClickPoints) != 2 {
		t.Fatalf("want 2 points, got %d", len(got.ClickPoints))
	}
	if got.ClickPoints[1] != want.ClickPoints[1] {
		t.Errorf("point mismatch: %+v", got.ClickPoints[1])
	}
}

// TestWireFormat pins the on-disk JSON field names: they are the
// compatibility contract with other tools reading pattern files.
func TestWireFormat(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	if err := st.Save(samplePattern()); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "demo.pattern.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, key := range []string{"version", "name", "looping", "clickPoints"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	points := raw["clickPoints"].([]any)
	point := points[1].(map[string]any)
	if point["x"] != float64(300) || point["y"] != float64(400) {
		t.Errorf("coordinate keys wrong: %v", point)
	}
	if point["delay"] != float64(250) {
		t.Errorf("delay key wrong: %v", point)
	}
	if point["mouseButton"] != "RIGHT" || point["clickType"] != "DOUBLE" {
		t.Errorf("enum keys wrong: %v", point)
	}
}

func TestListSorted(t *testing.T) {
	st := NewStore(t.TempDir())
	for _, name := range []string{"zeta", "alpha", "mid"} {
		p := samplePattern()
		p.Name = name
		if err := st.Save(p); err != nil {
			t.Fatalf("save %q: %v", name, err)
		}
	}

	names, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("want %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("want %v, got %v", want, names)
			break
		}
	}
}

func TestListEmptyDir(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "nonexistent"))
	names, err := st.List()
	if err != nil {
		t.Fatalf("list on missing dir: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("want no names, got %v", names)
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.pattern.json"), []byte("{oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(dir).Load("bad"); err == nil {
		t.Error("malformed pattern must fail to load")
	}
}

func TestLoadUnsupportedVersion(t *testing.T) {
	dir := t.TempDir()
	raw := `{"version":99,"name":"future","looping":false,"clickPoints":[]}`
	if err := os.WriteFile(filepath.Join(dir, "future.pattern.json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(dir).Load("future"); err == nil {
		t.Error("future version must fail to load")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	st := NewStore(t.TempDir())
	if err := st.Save(samplePattern()); err != nil {
		t.Fatal(err)
	}
	if err := st.Delete("demo"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete("demo"); err != nil {
		t.Errorf("second delete must not fail: %v", err)
	}
	if _, err := st.Load("demo"); err == nil {
		t.Error("pattern still loadable after delete")
	}
}

func TestSaveRejectsEmptyName(t *testing.T) {
	st := NewStore(t.TempDir())
	if err := st.Save(model.Pattern{}); err == nil {
		t.Error("empty name must be rejected")
	}
}

func TestPathEscapesSeparators(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(dir)
	p := samplePattern()
	p.Name = "../evil"
	if err := st.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".._evil.pattern.json")); err != nil {
		t.Errorf("name not sanitized into store dir: %v", err)
	}
}
