package i18n

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads label overrides from a YAML file and merges them over the
// English defaults. An empty path returns the defaults.
//
// The file mirrors the Variables layout:
//
//	sign_up:
//	  button_label: Create account
//	  confirmation_text: Almost there, check your inbox
func Load(fs afero.Fs, path string) (Variables, error) {
	if path == "" {
		return English(), nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Variables{}, fmt.Errorf("read labels %s: %w", path, err)
	}

	var override Variables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Variables{}, fmt.Errorf("parse labels %s: %w", path, err)
	}

	return Merge(English(), override), nil
}

// Store holds the active label table and allows it to be swapped at runtime.
// It is safe for concurrent use.
type Store struct {
	current atomic.Pointer[Variables]
	fs      afero.Fs
	path    string
	logger  *slog.Logger
}

// NewStore loads the label table at path and returns a Store serving it.
func NewStore(fs afero.Fs, path string, logger *slog.Logger) (*Store, error) {
	vars, err := Load(fs, path)
	if err != nil {
		return nil, err
	}
	s := &Store{fs: fs, path: path, logger: logger}
	s.current.Store(&vars)
	return s, nil
}

// Get returns the active label table.
func (s *Store) Get() Variables {
	return *s.current.Load()
}

// Reload re-reads the overrides file. On error the previous table stays
// active.
func (s *Store) Reload() error {
	vars, err := Load(s.fs, s.path)
	if err != nil {
		return err
	}
	s.current.Store(&vars)
	return nil
}

// Watch reloads the table whenever the overrides file changes on disk. It
// blocks until ctx is cancelled. The parent directory is watched so editors
// that replace the file on save are handled.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", target, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("label reload failed", "path", s.path, "error", err)
				continue
			}
			s.logger.Info("labels reloaded", "path", s.path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("label watcher error", "error", err)
		}
	}
}
