// Package config provides the application settings file: loading,
// saving, clamping and hot reload.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"clickforge/internal/model"
)

// Config is the persisted application configuration.
type Config struct {
	// Click is the clicking configuration handed to the engine. Every
	// field is clamped on set; the engine receives a read snapshot.
	Click model.ClickConfig `json:"click"`

	// General contains application-level settings.
	General GeneralConfig `json:"general"`
}

// GeneralConfig contains application-level settings.
type GeneralConfig struct {
	// APIEnabled enables the HTTP control API.
	APIEnabled bool `json:"api_enabled"`

	// APIPort is the control API port.
	APIPort int `json:"api_port"`

	// APIToken is an optional bearer token for API requests.
	APIToken string `json:"api_token,omitempty"`

	// ToggleHotkey starts/stops the clicker (e.g. "Ctrl+Alt+C").
	ToggleHotkey string `json:"toggle_hotkey,omitempty"`

	// RecordHotkey starts/stops pattern recording (e.g. "Ctrl+Alt+R").
	RecordHotkey string `json:"record_hotkey,omitempty"`

	// PatternDir overrides where patterns are stored. Empty means the
	// patterns directory next to the settings file.
	PatternDir string `json:"pattern_dir,omitempty"`
}

// Default returns the configuration used before any file exists.
func Default() *Config {
	return &Config{
		Click: model.DefaultClickConfig(),
		General: GeneralConfig{
			APIEnabled:   true,
			APIPort:      18530,
			ToggleHotkey: "Ctrl+Alt+C",
			RecordHotkey: "Ctrl+Alt+R",
		},
	}
}

// Manager handles loading and saving the settings file.
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func(Config)
}

// NewManager creates a manager rooted at the platform config directory.
func NewManager() (*Manager, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(path), nil
}

// NewManagerAt creates a manager for an explicit settings file path.
// Tests and the -config flag use this.
func NewManagerAt(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     Default(),
	}
}

// settingsPath returns the path to the settings file for this OS.
func settingsPath() (string, error) {
	var dir string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", "clickforge")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		dir = filepath.Join(appData, "clickforge")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "clickforge")
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Path returns the settings file path.
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the settings file. A missing file leaves the defaults in
// place and is not an error; a malformed file is.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	cfg.Click.Normalize()

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

// Save writes the settings file atomically (temp file + rename).
func (m *Manager) Save() error {
	m.mu.Lock()
	data, err := json.MarshalIndent(m.config, "", "  ")
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tmp := m.configPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, m.configPath); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Get returns a snapshot of the current configuration.
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.config
}

// Set replaces the configuration after clamping every click field to its
// documented range. Out-of-range input is repaired, never rejected.
func (m *Manager) Set(cfg Config) {
	cfg.Click.Normalize()

	m.mu.Lock()
	m.config = &cfg
	onChanged := m.onChanged
	m.mu.Unlock()

	if onChanged != nil {
		onChanged(cfg)
	}
}

// Update applies fn to a copy of the configuration and stores the result
// with the same clamping as Set.
func (m *Manager) Update(fn func(*Config)) {
	m.mu.Lock()
	cfg := *m.config
	m.mu.Unlock()

	fn(&cfg)
	m.Set(cfg)
}

// SetOnChanged registers a callback fired after every Set/Update and
// after a watched file reload.
func (m *Manager) SetOnChanged(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}

// PatternDir returns the directory patterns are stored in.
func (m *Manager) PatternDir() string {
	cfg := m.Get()
	if cfg.General.PatternDir != "" {
		return cfg.General.PatternDir
	}
	return filepath.Join(filepath.Dir(m.configPath), "patterns")
}
