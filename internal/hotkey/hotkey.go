// Package hotkey provides global hotkey combos for driving the engine
// without focus, e.g. "Ctrl+Alt+C" to toggle the clicker.
package hotkey

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Manager matches registered key combos against the live keyboard
// state. The key feed is platform-specific; the matching core is not.
type Manager struct {
	log *zap.SugaredLogger

	mu           sync.RWMutex
	hotkeys      []*registeredHotkey
	currentState map[string]bool
	stopFeed     func()
}

type registeredHotkey struct {
	parts    []string
	original string
	callback func()
}

// NewManager returns a manager with no registered combos.
func NewManager(log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{
		log:          log,
		currentState: make(map[string]bool),
	}
}

// Register adds a combo string (e.g. "Ctrl+Alt+C") and its callback.
// An empty combo is silently ignored so unset config fields need no
// special-casing by callers.
func (m *Manager) Register(combo string, callback func()) {
	if combo == "" {
		return
	}

	parts := strings.Split(strings.ToUpper(combo), "+")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = append(m.hotkeys, &registeredHotkey{
		parts:    parts,
		original: combo,
		callback: callback,
	})
}

// Clear removes all registered combos. The key feed keeps running.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = nil
}

// UpdateState records a key going down or up. A down transition checks
// every registered combo against the keys currently held.
func (m *Manager) UpdateState(key string, isDown bool) {
	key = strings.ToUpper(key)

	m.mu.Lock()
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}
	m.mu.Unlock()

	if isDown {
		m.checkMatches()
	}
}

func (m *Manager) checkMatches() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, hk := range m.hotkeys {
		match := true
		for _, part := range hk.parts {
			if !m.currentState[part] {
				match = false
				break
			}
		}
		if match {
			m.log.Infow("hotkey: triggered", "combo", hk.original)
			// Callbacks drive engine transitions that may block; never
			// hold up the key feed on them.
			go hk.callback()
		}
	}
}

// Start begins the platform key feed.
func (m *Manager) Start() error {
	return m.startFeed()
}

// Stop ends the key feed. Registered combos survive a restart.
func (m *Manager) Stop() {
	m.mu.Lock()
	stop := m.stopFeed
	m.stopFeed = nil
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
}
