package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/fragy/internal/logfields"
)

// DefaultDebounce is the quiet window before a change triggers a rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls OnChange after filesystem changes settle. Calls to OnChange
// never overlap; changes arriving during a call queue exactly one more call.
type Watcher struct {
	Debounce time.Duration
	OnChange func(ctx context.Context)
}

// Run watches roots until ctx is canceled. Directories are watched
// recursively; a file root is watched through its parent directory.
func (w *Watcher) Run(ctx context.Context, roots ...string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()

	files := map[string]struct{}{}
	for _, root := range roots {
		fi, err := os.Stat(root)
		switch {
		case err != nil:
			slog.Warn("Watch root missing", logfields.Path(root))
		case fi.IsDir():
			addDirsRecursive(fw, root)
		default:
			files[filepath.Clean(root)] = struct{}{}
			if err := fw.Add(filepath.Dir(root)); err != nil {
				slog.Warn("Watch add failed", logfields.Path(root), logfields.Error(err))
			}
		}
	}

	rebuildReq := make(chan struct{}, 1)
	trigger := w.debouncer(rebuildReq)
	go w.worker(ctx, rebuildReq)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev, files) {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirsRecursive(fw, ev.Name)
				}
			}
			slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// relevant filters events from directories watched only for one file.
func (w *Watcher) relevant(ev fsnotify.Event, files map[string]struct{}) bool {
	name := filepath.Clean(ev.Name)
	if _, ok := files[name]; ok {
		return true
	}
	if shouldIgnoreEvent(name) {
		return false
	}
	for f := range files {
		if filepath.Dir(f) == filepath.Dir(name) {
			return false
		}
	}
	return true
}

func (w *Watcher) debouncer(rebuildReq chan struct{}) func() {
	quiet := w.Debounce
	if quiet <= 0 {
		quiet = DefaultDebounce
	}
	var mu sync.Mutex
	var timer *time.Timer
	return func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(quiet, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
}

// worker runs OnChange sequentially. The buffered request channel holds at
// most one pending request, which coalesces changes made during a rebuild.
func (w *Watcher) worker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rebuildReq:
			if w.OnChange != nil {
				w.OnChange(ctx)
			}
		}
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent reports editor and OS artifacts that must not trigger
// rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
