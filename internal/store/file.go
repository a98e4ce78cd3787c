package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

const (
	filePermissions = 0644
	dirPermissions  = 0755

	// legacyTemplatesKey is where early versions stored templates
	legacyTemplatesKey = "urls"
)

// File stores the snapshot as one JSON document.
//
// Writes are read-modify-write of the named keys followed by an atomic
// rename. Watch picks up writes made by other processes and reports only
// the keys whose content differs from what this process last saw.
type File struct {
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	last map[types.Key][]byte // canonical JSON per key as last seen

	listeners listeners

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewFile opens (without creating) the document at path
func NewFile(path string, logger *zap.Logger) (*File, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	f := &File{path: path, logger: logger}
	snap, err := f.read()
	if err != nil {
		return nil, err
	}
	f.last = canonical(snap)
	return f, nil
}

// Path returns the document location
func (f *File) Path() string {
	return f.path
}

// Get reads the document fresh from disk
func (f *File) Get(ctx context.Context, keys ...types.Key) (types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.Snapshot{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	snap, err := f.read()
	if err != nil {
		return types.Snapshot{}, err
	}
	return project(snap, keys), nil
}

// Set replaces the written keys on disk and notifies listeners
func (f *File) Set(ctx context.Context, p types.Partial) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	snap, err := f.read()
	if err != nil {
		f.mu.Unlock()
		return err
	}
	p.Apply(&snap)
	snap.Normalize()

	if err := f.write(snap); err != nil {
		f.mu.Unlock()
		return err
	}
	f.last = canonical(snap)
	f.mu.Unlock()

	f.logger.Debug("store written", zap.String("path", f.path), zap.Any("keys", p.Keys()))
	f.listeners.notify(types.Change{Keys: p.Keys()})
	return nil
}

// OnChange registers a change listener
func (f *File) OnChange(l Listener) func() {
	return f.listeners.add(l)
}

// Watch starts watching the document's directory for writes from other
// processes. It returns immediately; Close stops the watcher.
func (f *File) Watch(ctx context.Context) error {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	if f.watcher != nil {
		return nil // Already running
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: atomic renames replace the file's inode
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(f.path), err)
	}

	f.watcher = watcher
	f.stopCh = make(chan struct{})
	f.doneCh = make(chan struct{})
	go f.run(ctx, watcher, f.stopCh, f.doneCh)

	f.logger.Debug("watching store", zap.String("path", f.path))
	return nil
}

// Close stops the watcher if it is running
func (f *File) Close() error {
	f.watchMu.Lock()
	defer f.watchMu.Unlock()
	if f.watcher == nil {
		return nil
	}

	close(f.stopCh)
	<-f.doneCh
	err := f.watcher.Close()
	f.watcher = nil
	return err
}

// run is the watcher event loop
func (f *File) run(ctx context.Context, watcher *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			f.reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("store watcher error", zap.Error(err))
		}
	}
}

// reload re-reads the document and notifies listeners about changed keys
func (f *File) reload() {
	f.mu.Lock()
	// Truncated but not yet rewritten by another writer
	if info, err := os.Stat(f.path); err == nil && info.Size() == 0 {
		f.mu.Unlock()
		return
	}
	snap, err := f.read()
	if err != nil {
		f.mu.Unlock()
		// Partially written by another editor; the next event will retry
		f.logger.Warn("failed to reload store", zap.String("path", f.path), zap.Error(err))
		return
	}
	current := canonical(snap)
	var changed []types.Key
	for _, k := range types.AllKeys {
		if !bytes.Equal(current[k], f.last[k]) {
			changed = append(changed, k)
		}
	}
	f.last = current
	f.mu.Unlock()

	if len(changed) > 0 {
		f.logger.Debug("store changed externally", zap.Any("keys", changed))
		f.listeners.notify(types.Change{Keys: changed})
	}
}

// read loads the document; a missing file yields an empty snapshot
func (f *File) read() (types.Snapshot, error) {
	var snap types.Snapshot
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			snap.Normalize()
			return snap, nil
		}
		return snap, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(bytes.TrimSpace(data)) > 0 {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return snap, fmt.Errorf("failed to parse store file: %w", err)
		}
		// Documents written by early versions keep templates under "urls"
		if _, ok := raw[string(types.KeyTemplates)]; !ok {
			if legacy, ok := raw[legacyTemplatesKey]; ok {
				raw[string(types.KeyTemplates)] = legacy
			}
		}
		targets := map[types.Key]any{
			types.KeyTemplates:    &snap.Templates,
			types.KeyVariables:    &snap.Variables,
			types.KeyEnvironments: &snap.Environments,
		}
		for key, target := range targets {
			value, ok := raw[string(key)]
			if !ok {
				continue
			}
			if err := json.Unmarshal(value, target); err != nil {
				return snap, fmt.Errorf("failed to parse store file key %s: %w", key, err)
			}
		}
	}
	snap.Normalize()
	return snap, nil
}

// write replaces the document atomically
func (f *File) write(snap types.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".shortcuts-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Chmod(tmpName, filePermissions); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set store file permissions: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// canonical encodes each key separately for change detection
func canonical(snap types.Snapshot) map[types.Key][]byte {
	out := make(map[types.Key][]byte, len(types.AllKeys))
	out[types.KeyTemplates], _ = json.Marshal(snap.Templates)
	out[types.KeyVariables], _ = json.Marshal(snap.Variables)
	out[types.KeyEnvironments], _ = json.Marshal(snap.Environments)
	return out
}
