package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// TriggerFunc is called with a study folder once its files stop changing.
type TriggerFunc func(ctx context.Context, studyPath string)

// Watcher observes an intake root and triggers a pipeline run for each
// study folder after its uploads settle. Every first-level directory under
// the root is one study; a burst of file events resets that study's settle
// timer so half-copied folders are never picked up.
type Watcher struct {
	root    string
	settle  time.Duration
	trigger TriggerFunc
	logger  *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewWatcher creates an intake watcher.
func NewWatcher(root string, settle time.Duration, trigger TriggerFunc, logger *zap.Logger) *Watcher {
	if settle <= 0 {
		settle = 30 * time.Second
	}
	return &Watcher{
		root:    root,
		settle:  settle,
		trigger: trigger,
		logger:  logger,
		timers:  make(map[string]*time.Timer),
	}
}

// Run watches until the context is cancelled. Subdirectories of the root are
// watched as they appear; fsnotify does not recurse on its own.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addRecursive(fw, w.root); err != nil {
		return err
	}

	w.logger.Info("intake watcher started",
		zap.String("root", w.root),
		zap.Duration("settle", w.settle),
	)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fw, event.Name); err != nil {
						w.logger.Warn("failed to watch new directory",
							zap.String("path", event.Name), zap.Error(err))
					}
				}
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				w.resetTimer(ctx, event.Name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

// resetTimer restarts the settle timer for the study folder the event
// belongs to.
func (w *Watcher) resetTimer(ctx context.Context, eventPath string) {
	study := w.studyFor(eventPath)
	if study == "" {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[study]; ok {
		t.Stop()
	}
	w.timers[study] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, study)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.logger.Info("study folder settled", zap.String("study", study))
		w.trigger(ctx, study)
	})
}

// studyFor maps an event path to its first-level directory under the root.
// Events on loose files directly in the root are ignored; a study is always
// a folder.
func (w *Watcher) studyFor(eventPath string) string {
	rel, err := filepath.Rel(w.root, eventPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		if info, err := os.Stat(eventPath); err != nil || !info.IsDir() {
			return ""
		}
	}
	return filepath.Join(w.root, parts[0])
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for study, t := range w.timers {
		t.Stop()
		delete(w.timers, study)
	}
}
