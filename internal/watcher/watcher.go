// Package watcher reports edits to a fixed set of document files.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 150 * time.Millisecond

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // File written or recreated
	ChangeRemoved                    // File deleted or renamed away
)

func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// Change is one debounced edit to a watched file.
type Change struct {
	Kind ChangeKind
	File string // Absolute path
}

// Watcher monitors document files for changes using fsnotify. Parent
// directories are watched rather than the files themselves, so editors
// that save by renaming a temp file over the original are still seen.
type Watcher struct {
	Changes <-chan Change // Read-only external channel

	files    map[string]bool
	dirs     []string
	debounce time.Duration
	changes  chan Change
	stop     chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the given files. A non-positive debounce
// selects DefaultDebounce.
func New(files []string, debounce time.Duration) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watcher: no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	set := make(map[string]bool, len(files))
	seenDir := make(map[string]bool)
	var dirs []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watcher: resolve %s: %w", f, err)
		}
		set[abs] = true
		if dir := filepath.Dir(abs); !seenDir[dir] {
			seenDir[dir] = true
			dirs = append(dirs, dir)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Changes:  ch,
		files:    set,
		dirs:     dirs,
		debounce: debounce,
		changes:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching. It fails if a parent directory cannot be watched.
func (w *Watcher) Start() error {
	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watcher: watch %s: %w", dir, err)
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. Pending changes that no
// reader takes are dropped.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				// Drain pending on close.
				for file := range pending {
					w.emitChange(file)
				}
				return
			}

			if !w.files[filepath.Clean(event.Name)] {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[filepath.Clean(event.Name)] = time.Now()
			}

		case now := <-ticker.C:
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					w.emitChange(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Ignore watch errors; they're non-fatal.
		}
	}
}

func (w *Watcher) emitChange(file string) {
	kind := ChangeModified
	if _, err := os.Stat(file); err != nil {
		kind = ChangeRemoved
	}
	select {
	case w.changes <- Change{Kind: kind, File: file}:
	case <-w.stop:
	}
}
