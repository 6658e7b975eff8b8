// Package watch reloads graph payload files as they change on disk, so an
// external process can keep a mounted graph current by rewriting the file.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// PayloadWatcher watches a single payload file and emits its contents after
// writes settle. Rapid save bursts from editors collapse into one emission.
type PayloadWatcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	path        string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	payloads    chan []byte
	logger      *zap.Logger
}

// NewPayloadWatcher creates a watcher for the given payload file.
func NewPayloadWatcher(path string, logger *zap.Logger) (*PayloadWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}

	return &PayloadWatcher{
		watcher:     watcher,
		path:        abs,
		debounceMap: make(map[string]time.Time),
		debounceDur: 200 * time.Millisecond, // Debounce rapid saves
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		payloads:    make(chan []byte, 1),
		logger:      logger,
	}, nil
}

// Payloads delivers the file contents after each settled change.
func (w *PayloadWatcher) Payloads() <-chan []byte {
	return w.payloads
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine.
// The containing directory is watched rather than the file itself, because
// editors commonly replace files by rename.
func (w *PayloadWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Info("watching payload file", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *PayloadWatcher) Stop() {
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
		w.logger.Warn("closing watcher failed", zap.Error(err))
	}
}

// IsWatching reports whether the event loop is running.
func (w *PayloadWatcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *PayloadWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(50 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
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
			w.logger.Warn("watcher error", zap.Error(err))

		case <-debounceTicker.C:
			w.processDebounced()
		}
	}
}

func (w *PayloadWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return // Ignore chmod, remove, etc.
	}

	w.mu.Lock()
	w.debounceMap[w.path] = time.Now()
	w.mu.Unlock()
}

func (w *PayloadWatcher) processDebounced() {
	w.mu.Lock()
	now := time.Now()
	settled := false
	if at, ok := w.debounceMap[w.path]; ok && now.Sub(at) >= w.debounceDur {
		delete(w.debounceMap, w.path)
		settled = true
	}
	w.mu.Unlock()

	if !settled {
		return
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("reading payload failed", zap.Error(err))
		}
		return
	}

	// Keep only the freshest payload when the consumer lags.
	select {
	case w.payloads <- data:
	default:
		select {
		case <-w.payloads:
		default:
		}
		w.payloads <- data
	}
}
