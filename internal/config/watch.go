package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the settings file when it changes on disk, so edits
// made by hand or by another instance take effect without a restart.
type Watcher struct {
	manager *Manager
	log     *zap.SugaredLogger
	fsw     *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching the manager's settings file. The watch is on the
// directory: editors and the manager itself replace the file by rename,
// which would break a watch on the file node.
func Watch(m *Manager, log *zap.SugaredLogger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(m.Path())); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch settings dir: %w", err)
	}

	w := &Watcher{
		manager: m,
		log:     log,
		fsw:     fsw,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	target := filepath.Clean(w.manager.Path())

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := w.manager.Load(); err != nil {
				w.log.Warnw("config: reload failed", "err", err)
				continue
			}
			w.log.Infow("config: reloaded", "path", target)
			cfg := w.manager.Get()
			w.manager.mu.Lock()
			onChanged := w.manager.onChanged
			w.manager.mu.Unlock()
			if onChanged != nil {
				onChanged(cfg)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnw("config: watch error", "err", err)
		}
	}
}
