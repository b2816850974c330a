package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	slogctx "github.com/veqryn/slog-context"
)

// maxWatches limits directory watches to prevent file descriptor exhaustion.
const maxWatches = 1000

// DefaultDebounce is how long a file must be quiet before its change is
// reported.
const DefaultDebounce = 200 * time.Millisecond

// Change is a settled modification of a workspace file.
type Change struct {
	Path    string
	Removed bool
}

// Watcher reports changes to the C/C++ files of a workspace. Before a change
// is passed on, the document store forgets the file and, for removed files,
// the remembered header/source pairs are dropped.
type Watcher struct {
	ws       *Workspace
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange []func(Change)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher watches every non-ignored directory of ws. Each hook is called
// once per settled change.
func NewWatcher(ws *Workspace, debounce time.Duration, hooks ...func(Change)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		ws:       ws,
		fsw:      fsw,
		debounce: debounce,
		onChange: hooks,
		pending:  make(map[string]*time.Timer),
	}
	if err := w.addTree(ws.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Watches returns the number of watched directories.
func (w *Watcher) Watches() int {
	return len(w.fsw.WatchList())
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.ws.Root() && w.ws.Ignored(path, true) {
			return filepath.SkipDir
		}
		if len(w.fsw.WatchList()) >= maxWatches {
			return filepath.SkipAll
		}
		if err := w.fsw.Add(path); err != nil {
			return nil // Skip errors
		}
		return nil
	})
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slogctx.Error(ctx, "watcher error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.stopTimers()
	return w.fsw.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.ws.Ignored(event.Name, true) {
				w.addTree(event.Name)
			}
			return
		}
	}

	if !w.ws.IsHeader(event.Name) && !w.ws.IsSource(event.Name) {
		return
	}
	if w.ws.Ignored(event.Name, false) {
		return
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}

	path := event.Name
	w.mu.Lock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.settle(ctx, path)
	})
	w.mu.Unlock()
}

// settle reports the state of path once events for it have stopped.
func (w *Watcher) settle(ctx context.Context, path string) {
	change := Change{Path: path, Removed: !fileExists(path)}
	w.ws.Documents().Invalidate(path)
	if change.Removed {
		if err := w.ws.Forget(path); err != nil {
			slogctx.Warn(ctx, "forget header/source pair", "path", path, "error", err)
		}
	}
	slogctx.Debug(ctx, "file changed", "path", w.ws.Rel(path), "removed", change.Removed)
	for _, hook := range w.onChange {
		hook(change)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
