// Package watch reruns a job when its input files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"page-curl-renderer/internal/logx"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher observes files and directories. Files are watched through their
// parent directory so that editors which replace the file on save are seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool // watched files, by absolute path
	dirs     map[string]bool // directories whose every entry counts
	debounce time.Duration
	log      *slog.Logger
}

// New watches paths. Empty entries are skipped.
func New(paths []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
		log:      logx.Or(logger),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	added := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: %w", err)
		}

		dir := abs
		if info.IsDir() {
			w.dirs[abs] = true
		} else {
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if added[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch: add %s: %w", dir, err)
		}
		added[dir] = true
	}
	if len(added) == 0 {
		fw.Close()
		return nil, fmt.Errorf("watch: nothing to watch")
	}
	return w, nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(ev.Name)
	return w.files[name] || w.dirs[filepath.Dir(name)]
}

// Run calls fn once per quiet period after a relevant change, until ctx is
// done. Errors from fn are logged and do not stop the loop. Run returns nil
// on cancellation and an error if the watcher itself fails.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context) error) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("watch: change", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		case <-timer.C:
			if err := fn(ctx); err != nil {
				w.log.Warn("watch: rerun failed", "err", err)
			}
		}
	}
}
