// Package tempstore manages the lifecycle of the temporary files an
// invocation's extractors may need, guaranteeing cleanup on every exit
// path (spec §5 "Temporary files are scoped to a single invocation and
// deleted on all exit paths, success or failure").
package tempstore

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a single temporary file scoped to one pipeline invocation.
type File struct {
	path string
}

// Create writes data to a new temporary file under dir (or the
// system default when dir is empty), named with prefix.
func Create(dir, prefix string, data []byte) (*File, error) {
	f, err := os.CreateTemp(dir, prefix+"-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("tempstore: create: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("tempstore: write: %w", err)
	}
	return &File{path: f.Name()}, nil
}

// Path returns the file's location on disk.
func (f *File) Path() string { return f.path }

// Close removes the temporary file. Safe to call multiple times.
func (f *File) Close() error {
	if f.path == "" {
		return nil
	}
	path := f.path
	f.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tempstore: remove %s: %w", filepath.Base(path), err)
	}
	return nil
}
