package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alexisbeaulieu97/inkwell/internal/ports"
)

const defaultDebounce = 250 * time.Millisecond

// Event reports that the watched file settled after a change, or that the
// underlying watcher failed.
type Event struct {
	Path  string
	Error error
}

// Watcher monitors a single file. It watches the parent directory so that
// editors which save by rename-and-replace are still noticed.
type Watcher struct {
	path     string
	dir      string
	watcher  *fsnotify.Watcher
	events   chan Event
	debounce time.Duration
	logger   ports.Logger
	start    sync.Once
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before an Event fires.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger attaches a logger for diagnostics.
func WithLogger(logger ports.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// New creates a watcher for path. Call Start to begin receiving events.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		dir:      filepath.Dir(abs),
		watcher:  fsWatcher,
		events:   make(chan Event, 1),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events returns the channel receiving change notifications. It is closed
// when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins watching until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", w.dir, err)
	}
	w.start.Do(func() {
		go w.run(ctx)
	})
	return nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)

	var pending time.Time
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.Now()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn(ctx, "file watcher error", "path", w.path, "error", err)
			}
			if !w.emit(ctx, Event{Path: w.path, Error: err}) {
				return
			}

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			if w.logger != nil {
				w.logger.Debug(ctx, "watched file changed", "path", w.path)
			}
			if !w.emit(ctx, Event{Path: w.path}) {
				return
			}
		}
	}
}

func (w *Watcher) emit(ctx context.Context, event Event) bool {
	select {
	case w.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
