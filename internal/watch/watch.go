// Package watch reports external changes to the file being edited.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/calumari/jform/internal/logging"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Event is a debounced change to the watched file.
type Event struct {
	Path string
	Op   string
	Time time.Time
}

// Watcher watches a single file. It watches the parent directory so editors
// that replace the file by renaming are still seen.
type Watcher struct {
	mu         sync.Mutex
	fs         *fsnotify.Watcher
	path       string
	dir        string
	debounce   time.Duration
	events     chan Event
	pending    *Event
	quietUntil time.Time
	stopCh     chan struct{}
	doneCh     chan struct{}
	running    bool
	logger     *zap.Logger
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before an event is
// delivered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = logging.OrNop(l) }
}

// New creates a watcher for path. Call Start to begin watching.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		fs:       fsw,
		path:     abs,
		dir:      filepath.Dir(abs),
		debounce: 200 * time.Millisecond,
		events:   make(chan Event, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events delivers debounced changes. The channel is closed when the watcher
// stops.
func (w *Watcher) Events() <-chan Event { return w.events }

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Suppress ignores changes for d, covering writes made by jform itself.
func (w *Watcher) Suppress(d time.Duration) {
	w.mu.Lock()
	w.quietUntil = time.Now().Add(d)
	w.pending = nil
	w.mu.Unlock()
}

// Start begins watching. It does not block.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.fs.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Debug("watching file", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.fs.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.fs.Close(); err != nil {
		w.logger.Warn("closing watcher", zap.Error(err))
	}
}

// Wait blocks until the watcher goroutine exits, either because Stop was
// called or the context passed to Start was cancelled.
func (w *Watcher) Wait() {
	<-w.doneCh
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer close(w.events)

	tick := w.debounce / 4
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	var op string
	switch {
	case ev.Has(fsnotify.Write):
		op = "modify"
	case ev.Has(fsnotify.Create):
		op = "create"
	case ev.Has(fsnotify.Remove):
		op = "delete"
	case ev.Has(fsnotify.Rename):
		op = "rename"
	default:
		return
	}

	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	if now.Before(w.quietUntil) {
		return
	}
	w.pending = &Event{Path: w.path, Op: op, Time: now}
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	ev := w.pending
	if ev == nil || now.Sub(ev.Time) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = nil
	w.mu.Unlock()

	select {
	case w.events <- *ev:
		w.logger.Debug("file changed", zap.String("path", ev.Path), zap.String("op", ev.Op))
	default:
		// A change is already queued; the reader reloads once either way.
	}
}
