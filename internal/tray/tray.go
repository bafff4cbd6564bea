//go:build (windows || darwin || linux) && cgo

// Package tray provides the system tray icon and menu using
// getlantern/systray.
package tray

import (
	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

// MenuItem is one tray menu entry.
type MenuItem struct {
	ID       int
	Title    string
	Callback func()
	item     *systray.MenuItem
}

// Tray manages the tray icon and its menu. Menu items are declared
// before Run; systray builds them once its event loop is up.
type Tray struct {
	log     *zap.SugaredLogger
	items   []*MenuItem
	tooltip string
	readyCh chan struct{}
	quitCh  chan struct{}
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
func (t *Tray) SetItemChecked(id int, checked bool) {
	mi := t.lookup(id)
	if mi == nil || mi.item == nil {
		return
	}
	if checked {
		mi.item.Check()
	} else {
		mi.item.Uncheck()
	}
}

// SetItemTitle replaces a menu item's text, e.g. a live status line.
func (t *Tray) SetItemTitle(id int, title string) {
	mi := t.lookup(id)
	if mi == nil || mi.item == nil {
		return
	}
	mi.item.SetTitle(title)
}

func (t *Tray) lookup(id int) *MenuItem {
	if id < 0 || id >= len(t.items) {
		return nil
	}
	return t.items[id]
}

// Run starts the tray event loop. It blocks until Stop and must run on
// the main goroutine on platforms whose UI loop requires it.
func (t *Tray) Run() {
	systray.Run(t.setupMenu, func() { close(t.quitCh) })
}

// Stop exits the tray event loop.
func (t *Tray) Stop() {
	systray.Quit()
}

func (t *Tray) setupMenu() {
	systray.SetTitle("ClickForge")
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(trayIcon())
	close(t.readyCh)
	t.log.Debug("tray: ready")

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}
		menuItem.item = systray.AddMenuItem(menuItem.Title, "")
		if menuItem.Callback == nil {
			menuItem.item.Disable()
			continue
		}
		go func(mi *MenuItem) {
			for {
				select {
				case <-mi.item.ClickedCh:
					mi.Callback()
				case <-t.quitCh:
					return
				}
			}
		}(menuItem)
	}
}

// trayIcon returns a minimal valid 16x16 32-bit ICO. The pixels stay
// transparent; platforms that require an icon accept it.
func trayIcon() []byte {
	icon := make([]byte, 1118)
	copy(icon[0:6], []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00})
	copy(icon[6:22], []byte{
		0x10, 0x10, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00,
		0x48, 0x04, 0x00, 0x00,
		0x16, 0x00, 0x00, 0x00,
	})
	copy(icon[22:62], []byte{
		0x28, 0x00, 0x00, 0x00,
		0x10, 0x00, 0x00, 0x00,
		0x20, 0x00, 0x00, 0x00,
		0x01, 0x00,
		0x20, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x04, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	})
	return icon
}
