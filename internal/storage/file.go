package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV stores all entries as one JSON object on disk and rewrites the
// file on every Set.
type FileKV struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
}

func NewFileKV(dataDir string) (*FileKV, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	f := &FileKV{
		path:    filepath.Join(dataDir, "storage.json"),
		entries: map[string]string{},
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileKV) load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var loaded map[string]string
	if err := json.Unmarshal(b, &loaded); err != nil {
		return fmt.Errorf("parse %s: %w", f.path, err)
	}
	if loaded != nil {
		f.entries = loaded
	}
	return nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *FileKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.entries[key]
	f.entries[key] = value
	if err := f.saveLocked(); err != nil {
		if had {
			f.entries[key] = prev
		} else {
			delete(f.entries, key)
		}
		return err
	}
	return nil
}

// saveLocked writes through a temp file so a crash never leaves half a document.
func (f *FileKV) saveLocked() error {
	b, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
