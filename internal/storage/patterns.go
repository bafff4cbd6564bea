// Package storage persists patterns as JSON files, one per pattern. The
// engine never touches files; a pattern that fails to parse simply never
// becomes playable.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clickforge/internal/model"
)

// formatVersion is written into every pattern file so the format can
// evolve without breaking old files.
const formatVersion = 1

const fileExt = ".pattern.json"

// patternFile is the on-disk form. Point fields round-trip losslessly
// through model.ClickPoint's JSON tags (x, y, delay, mouseButton,
// clickType).
type patternFile struct {
	Version     int                `json:"version"`
	Name        string             `json:"name"`
	Looping     bool               `json:"looping"`
	ClickPoints []model.ClickPoint `json:"clickPoints"`
}

// Store reads and writes patterns under a single directory. Pattern
// names are the unique key; saving an existing name overwrites it.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on
// first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the pattern atomically. An empty name is rejected: the
// name is the storage key.
func (s *Store) Save(p model.Pattern) error {
	if p.Name == "" {
		return fmt.Errorf("pattern name must not be empty")
	}

	pf := patternFile{
		Version:     formatVersion,
		Name:        p.Name,
		Looping:     p.Looping,
		ClickPoints: p.ClickPoints,
	}
	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pattern %q: %w", p.Name, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create pattern dir: %w", err)
	}

	path := s.path(p.Name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write pattern %q: %w", p.Name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace pattern %q: %w", p.Name, err)
	}
	return nil
}

// Load reads one pattern by name.
func (s *Store) Load(name string) (model.Pattern, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return model.Pattern{}, fmt.Errorf("read pattern %q: %w", name, err)
	}

	var pf patternFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return model.Pattern{}, fmt.Errorf("parse pattern %q: %w", name, err)
	}
	if pf.Version > formatVersion {
		return model.Pattern{}, fmt.Errorf("pattern %q has unsupported version %d", name, pf.Version)
	}

	p := model.Pattern{
		Name:        pf.Name,
		Looping:     pf.Looping,
		ClickPoints: pf.ClickPoints,
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// List returns the stored pattern names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list patterns: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a stored pattern. Deleting a missing pattern is not an
// error.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete pattern %q: %w", name, err)
	}
	return nil
}

// path maps a pattern name to its file, replacing separators so a name
// cannot escape the store directory.
func (s *Store) path(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
	return filepath.Join(s.dir, safe+fileExt)
}
