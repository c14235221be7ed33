// Package storage persists uploaded file bytes in a flat local directory.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/opendatahub/dataset-api/internal/core/domain"
)

// LocalStore writes files into a single directory under generated unique
// names that preserve the original extension.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed and returns a store rooted
// at it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save streams r into the store and returns the generated stored name.
func (s *LocalStore) Save(originalName string, r io.Reader) (string, error) {
	ext := filepath.Ext(filepath.Base(originalName))
	name := "file-" + uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create stored file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write stored file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("close stored file: %w", err)
	}
	return name, nil
}

// Open returns the stored bytes, or domain.ErrFileMissing when the name is
// unknown.
func (s *LocalStore) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrFileMissing
		}
		return nil, fmt.Errorf("open stored file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *LocalStore) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stored file: %w", err)
	}
	return nil
}

// Path resolves a stored name to its absolute location. Base strips any
// directory components so names cannot escape the store.
func (s *LocalStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
