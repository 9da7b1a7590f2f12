package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgellow/openid-selector/internal/log"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is notified after every reload attempt
type ReloadFunc func(err error)

// Registry holds the provider tables currently served. Pickers take a
// snapshot at construction; a reload only affects pages built afterwards.
type Registry struct {
	mu     sync.RWMutex
	tables Tables
	path   string

	onReload ReloadFunc
	debounce time.Duration
}

// NewRegistry serves the embedded defaults when path is empty
func NewRegistry(path string) (*Registry, error) {
	r := &Registry{path: path, debounce: 100 * time.Millisecond}
	if path == "" {
		r.tables = Default()
		return r, nil
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewStaticRegistry serves fixed tables
func NewStaticRegistry(tables Tables) *Registry {
	return &Registry{tables: tables}
}

// OnReload installs a hook called after each reload attempt
func (r *Registry) OnReload(fn ReloadFunc) {
	r.mu.Lock()
	r.onReload = fn
	r.mu.Unlock()
}

// Tables returns the current snapshot
func (r *Registry) Tables() Tables {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tables
}

// Path returns the backing file, empty for embedded or static tables
func (r *Registry) Path() string {
	return r.path
}

// Reload re-reads the providers file. On error the previous tables stay.
func (r *Registry) Reload() error {
	if r.path == "" {
		return nil
	}
	tables, err := LoadFile(r.path)

	r.mu.Lock()
	if err == nil {
		r.tables = tables
	}
	hook := r.onReload
	r.mu.Unlock()

	if hook != nil {
		hook(err)
	}
	if err != nil {
		return err
	}

	log.LogInfoWithFields("providers", "Provider tables loaded", map[string]any{
		"path":  r.path,
		"large": len(tables.Large),
		"small": len(tables.Small),
	})
	for _, w := range tables.Warnings() {
		log.LogWarnWithFields("providers", w, map[string]any{"path": r.path})
	}
	return nil
}

// Watch reloads the providers file whenever it changes, until ctx is done.
// The parent directory is watched so editors that replace the file are
// handled.
func (r *Registry) Watch(ctx context.Context) error {
	if r.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	log.LogInfoWithFields("providers", "Watching provider tables", map[string]any{
		"path": r.path,
	})

	target := filepath.Clean(r.path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(r.debounce)
			}
		case <-pending:
			pending = nil
			if err := r.Reload(); err != nil {
				log.LogErrorWithFields("providers", "Reload failed, keeping previous tables", map[string]any{
					"path":  r.path,
					"error": err.Error(),
				})
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.LogWarnWithFields("providers", "File watcher error", map[string]any{
				"error": err.Error(),
			})
		}
	}
}
