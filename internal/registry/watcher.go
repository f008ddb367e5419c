package registry

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a catalog file whenever it changes on disk and hands the
// freshly built registry to a callback. Existing registries are never
// modified.
type Watcher struct {
	path     string
	onReload func(*AgentRegistry)
	onError  func(error)
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the directory containing path so that editors which
// replace files via rename are still observed.
func NewWatcher(path string, onReload func(*AgentRegistry), onError func(error)) (*Watcher, error) {
	if onReload == nil {
		return nil, fmt.Errorf("reload callback is required")
	}
	if onError == nil {
		onError = func(error) {}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		onReload: onReload,
		onError:  onError,
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is canceled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.onError(fmt.Errorf("watch catalog: %w", err))
		}
	}
}

// reload parses the catalog. A half-written file fails validation and is
// retried on the next event.
func (w *Watcher) reload() {
	reg, err := LoadCatalog(w.path)
	if err != nil {
		w.onError(err)
		return
	}
	w.onReload(reg)
}
