//go:build (windows || darwin || linux) && cgo

package capture

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// Tap owns the OS event hook and fans raw events out to subscribers.
// gohook allows exactly one active hook per process, so pointer capture
// and global hotkeys share this one. The hook runs only while at least
// one subscriber exists.
type Tap struct {
	mu      sync.Mutex
	subs    map[int]chan hook.Event
	nextID  int
	stop    chan struct{}
	running bool
}

var systemTap = &Tap{subs: make(map[int]chan hook.Event)}

// SystemTap returns the process-wide tap.
func SystemTap() *Tap {
	return systemTap
}

// Subscribe registers a subscriber and returns its event channel plus a
// cancel function. The first subscriber starts the OS hook; cancelling
// the last one ends it. Subscriber channels are buffered; a subscriber
// that stops draining loses events rather than stalling the others.
func (t *Tap) Subscribe() (<-chan hook.Event, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan hook.Event, 1024)
	t.subs[id] = ch

	if !t.running {
		t.running = true
		t.stop = make(chan struct{})
		go t.pump(hook.Start(), t.stop)
	}

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if _, ok := t.subs[id]; !ok {
			return
		}
		delete(t.subs, id)
		if len(t.subs) == 0 && t.running {
			t.running = false
			close(t.stop)
			hook.End()
		}
	}
	return ch, cancel
}

func (t *Tap) pump(raw chan hook.Event, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-raw:
			if !ok {
				return
			}
			t.mu.Lock()
			for _, ch := range t.subs {
				select {
				case ch <- ev:
				default:
				}
			}
			t.mu.Unlock()
		}
	}
}
