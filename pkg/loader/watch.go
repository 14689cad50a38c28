package loader

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ha1tch/flavor-wheel/pkg/taxonomy"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded.
const DefaultDebounce = 200 * time.Millisecond

// Update is delivered when a watched dataset file changes. Err is set when
// the new content failed to parse or validate; the previous document stays
// in effect in that case.
type Update struct {
	Name string
	Doc  *taxonomy.Document
	Err  error
}

// Watcher reloads file-backed datasets when they change on disk.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	files    map[string]string // absolute path -> dataset name
	pending  map[string]time.Time
	debounce time.Duration
	updates  chan Update
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	logger   *zap.Logger
}

// NewWatcher creates a watcher for the given dataset files (name -> path).
// Parent directories are watched so that editors that replace files on save
// are still seen.
func NewWatcher(files map[string]string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]string),
		pending:  make(map[string]time.Time),
		debounce: DefaultDebounce,
		updates:  make(chan Update, 8),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
	dirs := make(map[string]bool)
	for name, p := range files {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = name
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// SetDebounce changes the quiet period. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Updates returns the channel on which reloaded documents arrive. It is
// closed once the watcher stops.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Start runs the event loop in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running || w.stopCh == nil {
		return
	}
	w.running = true
	go w.run(ctx, w.stopCh)
}

// Stop ends the event loop and releases the underlying watcher. It is safe to
// call more than once, and before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopCh == nil {
		w.mu.Unlock()
		return
	}
	running := w.running
	close(w.stopCh)
	w.stopCh = nil
	w.running = false
	w.mu.Unlock()

	if running {
		<-w.doneCh
	} else {
		close(w.updates)
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing file watcher", zap.Error(err))
	}
}

// run owns the updates channel and closes it on return.
func (w *Watcher) run(ctx context.Context, stopCh chan struct{}) {
	defer close(w.doneCh)
	defer close(w.updates)

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		case now := <-ticker.C:
			w.flush(now, stopCh)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	if _, ok := w.files[abs]; !ok {
		return
	}
	w.pending[abs] = time.Now()
}

// flush reloads every file that has been quiet for the debounce period.
func (w *Watcher) flush(now time.Time, stopCh chan struct{}) {
	for p, last := range w.pending {
		if now.Sub(last) < w.debounce {
			continue
		}
		delete(w.pending, p)

		u := Update{Name: w.files[p]}
		doc, err := taxonomy.ParseFile(p)
		if err == nil {
			err = doc.Validate()
		}
		if err != nil {
			u.Err = err
			w.logger.Warn("dataset reload failed", zap.String("name", u.Name), zap.Error(err))
		} else {
			u.Doc = doc
			w.logger.Info("dataset reloaded", zap.String("name", u.Name), zap.String("path", p))
		}

		select {
		case w.updates <- u:
		case <-stopCh:
			return
		}
	}
}
