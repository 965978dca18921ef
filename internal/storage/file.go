// ABOUTME: JSON-file Storage backend kept in the user's config directory
// ABOUTME: Every write replaces the file atomically via a temp file and rename

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the default file used by the file backend
const FileName = "identity.json"

// File stores all keys in a single JSON object on disk
type File struct {
	path string
	mu   sync.Mutex
}

type fileData struct {
	Values map[string]string `json:"values"`
}

// NewFile creates a file-backed store at path. The file is created lazily.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file location
func (f *File) Path() string {
	return f.path
}

// load reads the file. A missing or unreadable JSON file starts fresh.
func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var fd fileData
	if err := json.Unmarshal(data, &fd); err != nil || fd.Values == nil {
		return map[string]string{}, nil
	}
	return fd.Values, nil
}

// save writes the full key set back to disk
func (f *File) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(fileData{Values: values}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".identity-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	return f.SetAll(ctx, map[string]string{key: value})
}

func (f *File) SetAll(ctx context.Context, kv map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	for k, v := range kv {
		values[k] = v
	}
	return f.save(values)
}

func (f *File) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}
