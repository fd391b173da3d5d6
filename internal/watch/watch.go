// Package watch re-normalizes a set of probabilistic logic program
// sources whenever one of them changes on disk.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"credal/internal/config"
	"credal/internal/loader"
	"credal/internal/program"
)

// OnChange receives the result of one re-normalization run. The run ID
// ties log lines and callback invocations together. The callback runs
// on the watcher's event loop goroutine, so it must not call Stop.
type OnChange func(runID string, prog *program.Program, err error)

// Watcher monitors the directories containing a fixed set of source
// files and re-runs the loader over the whole set once changes settle.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	loader      *loader.Loader
	logger      *zap.Logger
	cfg         *config.Config
	files       []string
	dirs        []string
	onChange    OnChange
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity for debugging and tests.
type Stats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	RunsTriggered int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// New creates a Watcher over the given source files. The watcher
// registers each file's parent directory, so newly created files with a
// watched extension are picked up too. A nil logger is replaced with a
// no-op logger.
func New(files []string, cfg *config.Config, l *loader.Loader, logger *zap.Logger, onChange OnChange) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	dirSet := make(map[string]struct{})
	for _, f := range files {
		dirSet[filepath.Dir(f)] = struct{}{}
	}
	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}

	return &Watcher{
		watcher:     fw,
		loader:      l,
		logger:      logger,
		cfg:         cfg,
		files:       files,
		dirs:        dirs,
		onChange:    onChange,
		debounceMap: make(map[string]time.Time),
		debounceDur: cfg.GetDebounce(),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. This method is non-blocking; the event loop
// runs in a goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("Failed to watch directory",
				zap.String("dir", dir),
				zap.Error(err))
			continue
		}
		w.logger.Info("Watching directory", zap.String("dir", dir))
	}

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("Failed to close file watcher", zap.Error(err))
	}
	w.logger.Info("Watcher stopped")
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// Settled events are flushed on a fixed cadence, independent of the
	// debounce window length.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Watcher context cancelled")
			return

		case <-w.stopCh:
			w.logger.Debug("Watcher stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.processDebouncedEvents()
		}
	}
}

// handleEvent records a single filesystem event for later processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.cfg.WatchesExtension(event.Name) {
		return
	}

	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		// Ignore chmod and friends.
		return
	}

	w.logger.Debug("File event",
		zap.String("type", eventType),
		zap.String("path", event.Name))

	w.mu.Lock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType

	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	case "delete", "rename":
		w.stats.FilesDeleted++
	}

	// Debounce: rapid saves collapse into one run.
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// processDebouncedEvents triggers one re-normalization when every
// pending event has settled past the debounce window.
func (w *Watcher) processDebouncedEvents() {
	w.mu.Lock()
	now := time.Now()
	settled := make([]string, 0)
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}
	w.rerun(settled)
}

// rerun reloads the full source set. Changed paths are only reported;
// the merge semantics of a multi-file load depend on every input, so a
// partial reload would not be equivalent.
func (w *Watcher) rerun(changed []string) {
	runID := uuid.NewString()
	start := time.Now()

	prog, err := w.loader.Load(w.files...)

	w.mu.Lock()
	w.stats.RunsTriggered++
	if err != nil {
		w.stats.Errors++
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("Re-normalization failed",
			zap.String("run", runID),
			zap.Strings("changed", changed),
			zap.Error(err))
	} else {
		w.logger.Info("Program re-normalized",
			zap.String("run", runID),
			zap.Strings("changed", changed),
			zap.Duration("elapsed", time.Since(start)))
	}

	if w.onChange != nil {
		w.onChange(runID, prog, err)
	}
}

// GetStats returns a copy of the current watcher statistics.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// ResetStats resets the watcher statistics.
func (w *Watcher) ResetStats() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = Stats{}
}

// IsWatching returns true while the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// WatchedDirs returns the directories registered with the watcher.
func (w *Watcher) WatchedDirs() []string {
	return w.watcher.WatchList()
}
