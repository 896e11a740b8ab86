package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/harrylevesque/navshell/internal/models"
)

// FileMenuSource reads the menu from a YAML file and watches it for changes.
type FileMenuSource struct {
	path   string
	logger *zap.Logger
}

func NewFileMenuSource(path string, logger *zap.Logger) *FileMenuSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileMenuSource{path: path, logger: logger}
}

func (s *FileMenuSource) Load(ctx context.Context) (*models.Menu, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	return ParseMenu(data)
}

// Watch watches the file's directory, so editors that replace the file by
// rename are picked up too. Files that fail to parse are logged and skipped.
func (s *FileMenuSource) Watch(ctx context.Context) (<-chan *models.Menu, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch menu: %w", err)
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch menu: %w", err)
	}

	out := make(chan *models.Menu)
	name := filepath.Clean(s.path)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				menu, err := s.Load(ctx)
				if err != nil {
					s.logger.Error("menu reload failed", zap.String("path", s.path), zap.Error(err))
					continue
				}
				select {
				case out <- menu:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("menu watcher error", zap.Error(err))
			}
		}
	}()
	return out, nil
}
