package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File keeps the blob in a single file on disk. Writes go through a temp file
// and a rename so a crash never leaves a half-written blob.
type File struct {
	path string
}

// NewFile returns a slot backed by path.
func NewFile(path string) *File { return &File{path: path} }

func (f *File) Read() ([]byte, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("persist: read %s: %w", f.path, err)
	}
	return b, nil
}

func (f *File) Write(b []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("persist: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("persist: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("persist: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("persist: rename: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
