// Package watch wraps fsnotify with the hardening every directory watcher
// in the pipeline needs: extension filtering, duplicate-notification
// dedup, a write-settle debounce and an existence re-check.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce gives the writing process time to finish before the
// handler reads the file.
const DefaultDebounce = 500 * time.Millisecond

// Handler processes one newly created file. It runs on the watch
// goroutine, so an in-flight file is always fully handled before the next
// notification is looked at (and before cancellation takes effect).
type Handler func(path string)

// Watcher delivers debounced creation events for one directory,
// non-recursive.
type Watcher struct {
	dir      string
	exts     map[string]bool
	debounce time.Duration
	handler  Handler
	seen     map[string]bool
}

// New returns a Watcher over dir that invokes handler for created files
// whose lowercased extension is in exts.
func New(dir string, exts []string, handler Handler) *Watcher {
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowed[strings.ToLower(e)] = true
	}
	return &Watcher{
		dir:      dir,
		exts:     allowed,
		debounce: DefaultDebounce,
		handler:  handler,
		seen:     make(map[string]bool),
	}
}

// Run watches until ctx is cancelled. The current file finishes handling
// before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if !w.accept(ev.Name) {
				continue
			}
			time.Sleep(w.debounce)
			if _, err := os.Stat(ev.Name); err != nil {
				// Already gone: a duplicate notification beat us here,
				// or the writer moved it away.
				continue
			}
			w.handler(ev.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error on %s: %v", w.dir, err)
		}
	}
}

// accept filters by extension and dedupes by absolute path for the
// process lifetime. fsnotify can fire several events for one physical
// file; only the first one wins.
func (w *Watcher) accept(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !w.exts[ext] {
		log.Printf("Ignored (extension %q): %s", ext, filepath.Base(path))
		return false
	}
	if w.seen[path] {
		return false
	}
	w.seen[path] = true
	return true
}
