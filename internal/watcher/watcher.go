// Package watcher notifies subscribers when any of a set of files changes.
// Bursts of filesystem events are debounced into a single notification.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/rangeslider/internal/log"
	"github.com/zjrosen/rangeslider/internal/pubsub"
)

// EventType distinguishes change notifications from watcher failures.
type EventType int

const (
	// FileChanged means one or more watched files were written, created,
	// renamed or removed.
	FileChanged EventType = iota
	// WatcherError carries an error reported by fsnotify.
	WatcherError
)

// WatcherEvent is the payload published on the broker.
type WatcherEvent struct {
	Type EventType
	// Path is the last watched file that changed in the debounce window.
	Path  string
	Error error
}

// Config holds watcher configuration.
type Config struct {
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig returns a config watching paths with a 100ms debounce.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: 100 * time.Millisecond,
	}
}

// Watcher watches the parent directories of its files so that editors that
// save by rename are still observed.
type Watcher struct {
	fsw     *fsnotify.Watcher
	cfg     Config
	files   map[string]struct{}
	broker  *pubsub.Broker[WatcherEvent]
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
	stopped bool
	mu      sync.Mutex
}

// New creates a watcher. The broker exists from this point on, before Start.
func New(cfg Config) (*Watcher, error) {
	if cfg.DebounceDur <= 0 {
		cfg.DebounceDur = DefaultConfig().DebounceDur
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	files := make(map[string]struct{}, len(cfg.Paths))
	for _, p := range cfg.Paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		files[abs] = struct{}{}
	}

	return &Watcher{
		fsw:    fsw,
		cfg:    cfg,
		files:  files,
		broker: pubsub.NewBroker[WatcherEvent](),
		done:   make(chan struct{}),
	}, nil
}

// Broker returns the broker change events are published on.
func (w *Watcher) Broker() *pubsub.Broker[WatcherEvent] {
	return w.broker
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	dirs := make(map[string]struct{})
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	w.started = true
	w.wg.Add(1)
	go w.loop()
	log.Debug(log.CatWatcher, "watcher started", "files", len(w.files))
	return nil
}

// Stop ends the watch loop and closes the broker. It is safe to call more
// than once, and before Start.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	w.mu.Unlock()

	w.wg.Wait()
	err := w.fsw.Close()
	w.broker.Close()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			changed = event.Name
			if timer == nil {
				timer = time.NewTimer(w.cfg.DebounceDur)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.cfg.DebounceDur)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			log.Debug(log.CatWatcher, "file changed", "path", changed)
			w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{Type: FileChanged, Path: changed})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "watch error", "error", err)
			w.broker.Publish(pubsub.UpdatedEvent, WatcherEvent{Type: WatcherError, Error: err})
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.files[abs]
	return ok
}
