package prompt

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/pawchat-ai/pawchat/internal/logging"
)

// Watcher reloads a Library whenever its override file changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	library *Library
	path    string
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	mu      sync.Mutex
}

// NewWatcher creates a watcher for the prompt file at path. The containing
// directory is watched rather than the file itself so editors that replace
// the file on save are still caught.
func NewWatcher(library *Library, path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	return &Watcher{
		watcher: w,
		library: library,
		path:    path,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for prompt file changes.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()
	go w.run()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	log := logging.Component("prompt")
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := w.library.ReloadFile(w.path); err != nil {
				log.Warn().Err(err).Str("path", w.path).Msg("prompt reload failed, keeping previous set")
				continue
			}
			log.Info().Str("path", w.path).Msg("prompts reloaded")
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("prompt watcher error")
		}
	}
}

// Stop stops the watcher and waits for the run loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.mu.Unlock()

	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}
