package ports

import "io"

// FileStore persists uploaded file bytes under generated names.
type FileStore interface {
	// Save streams r to durable storage under a generated unique name that
	// preserves originalName's extension, returning the stored name.
	Save(originalName string, r io.Reader) (string, error)
	// Open returns the stored bytes, or domain.ErrFileMissing when absent.
	Open(name string) (io.ReadCloser, error)
	// Remove deletes a stored file. A missing file is not an error.
	Remove(name string) error
	// Path resolves a stored name to a local filesystem path.
	Path(name string) string
}
