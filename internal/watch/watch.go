// Package watch reports when files change on disk.
//
// Parent directories are watched rather than the files themselves, so
// editors that save by writing a temp file and renaming it are still seen.
// Bursts of events for one file are collapsed into a single notification.
package watch

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before it is reported.
const DefaultDebounce = 150 * time.Millisecond

// Watcher delivers changed paths on Changes.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	changes  chan string
	done     chan struct{}
	closed   chan struct{}
}

// New watches paths. Each path is reported in the cleaned absolute form.
func New(debounce time.Duration, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		files:    make(map[string]bool),
		debounce: debounce,
		changes:  make(chan string, 16),
		done:     make(chan struct{}),
		closed:   make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	go w.run()
	return w, nil
}

// Changes receives one path per settled burst of writes.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Close stops watching. Changes is closed afterwards.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fs.Close()
	<-w.closed
	return err
}

func (w *Watcher) run() {
	defer close(w.closed)
	defer close(w.changes)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.files[ev.Name] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			pending[ev.Name] = true
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("file watcher: %v", err)
		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)
			for _, p := range paths {
				select {
				case w.changes <- p:
				case <-w.done:
					return
				}
			}
		}
	}
}

// Drain returns every change already delivered without blocking, each path
// once.
func Drain(changes <-chan string) []string {
	seen := make(map[string]bool)
	var out []string
	for {
		select {
		case p, ok := <-changes:
			if !ok {
				return out
			}
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		default:
			return out
		}
	}
}
