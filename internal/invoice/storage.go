package invoice

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage keeps the uploaded invoice documents next to their analyses.
// Names are flat: Save returns the name Get and Delete expect.
type Storage interface {
	Save(filename string, data []byte) (string, error)
	Get(name string) ([]byte, error)
	Delete(name string) error
}

// LocalStorage stores documents as files in a single directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates basePath when missing
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// path keeps every name inside basePath
func (l *LocalStorage) path(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(l.basePath, base), nil
}

// Save writes the document through a temporary file so a failed upload never
// leaves a truncated document behind.
func (l *LocalStorage) Save(filename string, data []byte) (string, error) {
	path, err := l.path(filename)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.basePath, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return filepath.Base(path), nil
}

// Get returns ErrNotFound for documents that were never stored
func (l *LocalStorage) Get(name string) ([]byte, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
