package ml

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a model artifact into a Registry whenever the file changes.
type Watcher struct {
	registry  *Registry
	modelType string
	path      string
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
}

func NewWatcher(registry *Registry, modelType, path string, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and deploy tools replace the file by rename.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		registry:  registry,
		modelType: modelType,
		path:      filepath.Clean(path),
		logger:    logger,
		watcher:   fw,
	}, nil
}

// Run processes file events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

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
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("model watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	model, err := LoadModel(w.modelType, w.path)
	if err != nil {
		// keep serving the previous model
		w.logger.Warn("model reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.registry.Set(model)
	w.logger.Info("model reloaded", zap.String("path", w.path), zap.String("type", w.modelType))
}
