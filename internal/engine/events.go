package engine

import "sync"

// Listener receives engine notifications. All methods are fired from the
// worker goroutine: implementations must either return immediately or
// redispatch to their own goroutine. A listener that blocks stalls the
// tick loop.
type Listener interface {
	// OnClickPerformed fires after each successfully injected click.
	OnClickPerformed()

	// OnStateChanged fires on every state transition.
	OnStateChanged(state State)

	// OnProgress fires after each played pattern step. For a given step
	// it is posted before that step's OnClickPerformed.
	OnProgress(currentStep, totalSteps int)
}

// Listeners is a subscriber list shared by the scheduler and player.
type Listeners struct {
	mu   sync.RWMutex
	subs []Listener
}

// NewListeners returns an empty subscriber list.
func NewListeners() *Listeners {
	return &Listeners{}
}

// Add registers a listener.
func (l *Listeners) Add(sub Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subs = append(l.subs, sub)
}

// Remove unregisters a previously added listener.
func (l *Listeners) Remove(sub Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.subs {
		if s == sub {
			l.subs = append(l.subs[:i], l.subs[i+1:]...)
			return
		}
	}
}

func (l *Listeners) clickPerformed() {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.subs {
		s.OnClickPerformed()
	}
}

func (l *Listeners) stateChanged(state State) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.subs {
		s.OnStateChanged(state)
	}
}

func (l *Listeners) progress(current, total int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.subs {
		s.OnProgress(current, total)
	}
}
