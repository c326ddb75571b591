package assets

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/mirage/engine/core"
)

// Watcher observes a set of shader source files and latches a dirty flag when
// any of them changes. Check() consumes the flag.
type Watcher struct {
	hasChanges atomic.Bool
	fsnotify   *fsnotify.Watcher
	done       chan struct{}
}

// NewWatcher watches the given paths. A nil Watcher is returned with the error
// when the underlying notifier cannot be created; callers treat that as
// hot-reload unavailable, not fatal.
func NewWatcher(paths ...string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	for _, p := range paths {
		if err := fsWatch.Add(p); err != nil {
			core.LogWarn("watcher: cannot watch '%s': %s", p, err)
		}
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.hasChanges.Store(true)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("watcher error: %s", err)
		case <-w.done:
			return
		}
	}
}

// Check reports whether any watched file changed since the last call and
// resets the flag.
func (w *Watcher) Check() bool {
	return w.hasChanges.Swap(false)
}

// Pending reports whether a change is latched without consuming it.
func (w *Watcher) Pending() bool {
	return w.hasChanges.Load()
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsnotify.Close()
}
