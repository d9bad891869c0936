package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

const filePerm = 0o644

// File implements Provider for a single journal file on the local file system.
//
// There is no locking between processes: two invocations racing on the same
// file both read, and the last rename wins.
type File struct {
	path string // absolute path to the journal file
}

// NewFile returns a Provider for the journal at path. The file does not need
// to exist yet, but path must not name a directory.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: journal path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("storage: journal path is a directory: %s", abs)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("storage: stat journal: %w", err)
	}
	return &File{path: abs}, nil
}

// Path returns the absolute journal path.
func (f *File) Path() string {
	return f.path
}

// Read returns the journal bytes, or nil if the file does not exist.
func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return data, nil
}

// Write atomically replaces the journal: temp file in the same directory,
// fsync, rename. The parent directory must exist.
func (f *File) Write(content []byte) error {
	_, statErr := os.Stat(f.path)
	created := errors.Is(statErr, fs.ErrNotExist)

	if err := atomic.WriteFile(f.path, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("storage: write %s: %w", f.path, err)
	}
	// atomic.WriteFile keeps an existing file's mode; new files get the temp file's 0600.
	if created {
		if err := os.Chmod(f.path, filePerm); err != nil {
			return fmt.Errorf("storage: chmod %s: %w", f.path, err)
		}
	}
	return nil
}
