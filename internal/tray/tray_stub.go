//go:build !((windows || darwin || linux) && cgo)

// Package tray provides the system tray icon and menu using
// getlantern/systray.
package tray

import (
	"sync"

	"go.uber.org/zap"
)

// MenuItem is one tray menu entry.
type MenuItem struct {
	ID       int
	Title    string
	Callback func()
}

// Tray is the fallback for platforms without a tray backend. It keeps
// the same API; Run blocks until Stop so main's lifecycle is unchanged.
type Tray struct {
	log      *zap.SugaredLogger
	items    []*MenuItem
	tooltip  string
	readyCh  chan struct{}
	quitCh   chan struct{}
	quitOnce sync.Once
}

// New creates a tray with the given tooltip.
func New(tooltip string, log *zap.SugaredLogger) *Tray {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Tray{
		log:     log,
		tooltip: tooltip,
		readyCh: make(chan struct{}),
		quitCh:  make(chan struct{}),
	}
}

// AddMenuItem declares a menu item and returns its id for later
// updates. Must be called before Run.
func (t *Tray) AddMenuItem(title string, callback func()) int {
	id := len(t.items)
	t.items = append(t.items, &MenuItem{
		ID:       id,
		Title:    title,
		Callback: callback,
	})
	return id
}

// AddSeparator declares a separator. Must be called before Run.
func (t *Tray) AddSeparator() {
	t.items = append(t.items, nil)
}

// SetItemChecked updates the checkmark of a menu item.
func (t *Tray) SetItemChecked(id int, checked bool) {}

// SetItemTitle replaces a menu item's text, e.g. a live status line.
func (t *Tray) SetItemTitle(id int, title string) {}

// Run blocks until Stop; there is no tray backend on this platform.
func (t *Tray) Run() {
	close(t.readyCh)
	t.log.Debug("tray: no backend on this platform")
	<-t.quitCh
}

// Stop exits the tray event loop.
func (t *Tray) Stop() {
	t.quitOnce.Do(func() { close(t.quitCh) })
}
