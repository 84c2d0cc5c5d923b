package policy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a policy file into an Engine when it changes on disk.
// Change bursts are debounced so editors that write in several steps trigger
// a single reload.
type Watcher struct {
	path     string
	engine   *Engine
	debounce time.Duration
	logger   *slog.Logger

	// OnReload, if set, is called after each reload attempt with the
	// loaded policy (nil on failure) and the load error.
	OnReload func(p *Policy, err error)
}

// NewWatcher creates a watcher for the policy file at path.
func NewWatcher(path string, engine *Engine, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		path:     path,
		engine:   engine,
		debounce: debounce,
		logger:   slog.Default().With("component", "policy.watcher"),
	}
}

// Watch blocks until the context is cancelled, reloading the policy whenever
// the file is written or replaced. A failed reload keeps the previous policy
// active.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors replace files via rename, which drops
	// a watch on the file itself.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.logger.Info("policy watcher started", "path", w.path, "debounce_ms", w.debounce.Milliseconds())

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("policy watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	p, err := LoadFile(w.path)
	if err != nil {
		w.logger.Error("policy reload failed, keeping previous policy",
			"path", w.path,
			"error", err,
		)
	} else {
		w.engine.Reload(p)
		w.logger.Info("policy reloaded",
			"path", w.path,
			"version", p.Version,
			"rules", len(p.Rules),
		)
	}

	if w.OnReload != nil {
		w.OnReload(p, err)
	}
}
