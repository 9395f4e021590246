// Package watch reloads a showcase when its asset file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pc-showcase/internal/logging"
)

// DefaultDebounce absorbs the burst of events an exporter writes per save.
const DefaultDebounce = 300 * time.Millisecond

// ErrRunning is returned by Start on a watcher that is already running.
var ErrRunning = errors.New("watch: already running")

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// OnChange runs on the watcher goroutine once the file settles.
	OnChange func(path string)
	Logger   *zap.Logger
}

// Watcher reports settled writes to one file. It watches the parent
// directory so that editors replacing the file by rename are seen.
type Watcher struct {
	path string
	opts Options
	log  *zap.Logger
	fw   *fsnotify.Watcher

	mu      sync.Mutex
	running bool
	pending time.Time
	fired   int

	stopCh chan struct{}
	doneCh chan struct{}
}

// New returns a stopped watcher for path.
func New(path string, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	return &Watcher{
		path:   abs,
		opts:   opts,
		log:    logging.OrNop(opts.Logger).Named("watch"),
		fw:     fw,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Fired returns how many change notifications were delivered.
func (w *Watcher) Fired() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Start begins watching until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrRunning
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.fw.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.log.Info("watching asset", zap.String("path", w.path))
	go w.run(ctx)
	return nil
}

// Stop ends the watch and waits for the goroutine. It is safe to call more
// than once and on a watcher that never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		select {
		case <-w.stopCh:
		default:
			close(w.stopCh)
		}
		<-w.doneCh
	}
	if err := w.fw.Close(); err != nil {
		w.log.Warn("close watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	tick := time.NewTicker(w.opts.Debounce / 3)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-tick.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.log.Debug("asset event", zap.String("op", ev.Op.String()))
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(now time.Time) {
	w.mu.Lock()
	if w.pending.IsZero() || now.Sub(w.pending) < w.opts.Debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.fired++
	w.mu.Unlock()

	w.log.Info("asset changed", zap.String("path", w.path))
	if w.opts.OnChange != nil {
		w.opts.OnChange(w.path)
	}
}
