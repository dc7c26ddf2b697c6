// Package watch re-runs an action whenever a manuscript file changes.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

const (
	defaultDebounce  = 250 * time.Millisecond
	defaultPerMinute = 30
	defaultBurst     = 3
)

// Watcher watches a single file. Bursts of events are collapsed into one
// change after a quiet period, and changes pass a rate limiter before the
// action runs.
type Watcher struct {
	path     string
	debounce time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
	ready    chan struct{}
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithRate allows perMinute actions per minute with bursts of up to burst
func WithRate(perMinute, burst int) Option {
	return func(w *Watcher) {
		if perMinute > 0 && burst > 0 {
			w.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		debounce: defaultDebounce,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/defaultPerMinute), defaultBurst),
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Path is the absolute path of the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Ready is closed once the watch is registered
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is done, calling onChange after every settled change
// to the file. An error from onChange is logged and watching continues.
// Run must be called at most once.
// The directory is watched rather than the file so that editors which save
// by renaming over the original keep being followed.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	close(w.ready)
	w.logger.Info("watching manuscript", "path", w.path, "debounce", w.debounce)

	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("manuscript event", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			settled = timer.C

		case <-settled:
			settled = nil
			if err := w.limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("rate limiter: %w", err)
			}
			start := time.Now()
			if err := onChange(ctx); err != nil {
				w.logger.Warn("re-analysis failed", "path", w.path, "error", err)
				continue
			}
			w.logger.Debug("re-analysis finished", "duration", time.Since(start))

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
