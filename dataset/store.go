// Package dataset moves pattern datasets between local directories,
// in-memory fixtures and object storage, and loads the JKU Patterns
// Development Database layout into pattern sets. All access goes
// through the Store interface so that loaders and the syncer work the
// same against every backend.
package dataset

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a dataset file does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing the files of a
// dataset. Names are slash-separated paths relative to the store root.
type Store interface {
	// Open opens a file for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create opens a file for streaming writes. The file becomes
	// visible when the returned blob is closed without error.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a file atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the file names under the prefix in sorted order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a dataset file.
type Blob interface {
	io.Reader
	io.Closer

	// Size returns the size of the file in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle to a dataset file.
type WritableBlob interface {
	io.Writer
	io.Closer

	// Sync flushes buffered data where the backend supports it.
	Sync() error
}

// ReadAll reads the named file fully.
func ReadAll(ctx context.Context, store Store, name string) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	return io.ReadAll(blob)
}
