// Package watch reloads configuration when files on disk change.
package watch

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when no debounce duration is configured.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer batches change notifications and fires onTrigger once the
// changes have been quiet for the debounce duration.
type Debouncer struct {
	debounce  time.Duration
	onTrigger func(paths []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer. A zero debounce uses DefaultDebounce.
func NewDebouncer(debounce time.Duration, onTrigger func(paths []string)) *Debouncer {
	if onTrigger == nil {
		panic("onTrigger callback cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Debouncer{
		debounce:  debounce,
		onTrigger: onTrigger,
		pending:   make(map[string]struct{}),
	}
}

// Changed queues path and restarts the quiet period.
func (d *Debouncer) Changed(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	d.onTrigger(paths)
}

// Stop cancels any pending trigger. Further changes are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}

// FileWatcher watches a set of files and calls onChange, debounced, when any
// of them is written, created, renamed or removed. Directories are watched
// rather than files so editors that replace files atomically are seen.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	logger    *slog.Logger

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool

	done      chan struct{}
	wg        sync.WaitGroup
}

// NewFileWatcher starts watching files. Paths that do not exist yet are
// still tracked through their parent directory.
func NewFileWatcher(files []string, debounce time.Duration, logger *slog.Logger, onChange func(paths []string)) (*FileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher:   w,
		debouncer: NewDebouncer(debounce, onChange),
		logger:    logger,
		files:     make(map[string]bool),
		dirs:      make(map[string]bool),
		done:      make(chan struct{}),
	}
	if err := fw.SetFiles(files); err != nil {
		w.Close()
		return nil, err
	}

	fw.wg.Add(1)
	go fw.loop()
	return fw, nil
}

// SetFiles replaces the tracked set. Directories no longer holding a tracked
// file stop being watched.
func (fw *FileWatcher) SetFiles(files []string) error {
	tracked := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", f, err)
		}
		tracked[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for dir := range fw.dirs {
		if !dirs[dir] {
			_ = fw.watcher.Remove(dir)
			delete(fw.dirs, dir)
		}
	}
	for dir := range dirs {
		if fw.dirs[dir] {
			continue
		}
		if err := fw.watcher.Add(dir); err != nil {
			// A missing machine config directory is normal.
			fw.logger.Debug("not watching directory", "dir", dir, "err", err)
			continue
		}
		fw.dirs[dir] = true
	}
	fw.files = tracked
	return nil
}

// Files returns the tracked absolute paths.
func (fw *FileWatcher) Files() []string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	paths := make([]string, 0, len(fw.files))
	for p := range fw.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

func (fw *FileWatcher) tracks(path string) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.files[filepath.Clean(path)]
}

func (fw *FileWatcher) loop() {
	defer fw.wg.Done()
	for {
		select {
		case <-fw.done:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.tracks(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			fw.logger.Debug("config file changed", "path", event.Name, "op", event.Op.String())
			fw.debouncer.Changed(event.Name)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", "err", err)
		}
	}
}

// Close stops watching and waits for the event loop to exit.
func (fw *FileWatcher) Close() error {
	fw.debouncer.Stop()
	close(fw.done)
	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}
